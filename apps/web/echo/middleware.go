package echoweb

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	appfs "github.com/trezcool/mahudhurio/fs"
)

const (
	headerHXRequest = "HX-Request"
	headerHXTrigger = "HX-Trigger"

	eventShowAlert       = "showAlert"
	eventAttendanceSaved = "attendanceSaved"
)

// requestIDMiddleware tags every request with an X-Request-ID (kept when the client sent one)
// and stores it in the request context so that backend calls forward it.
func requestIDMiddleware() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(ctx echo.Context, id string) {
			req := ctx.Request()
			ctx.SetRequest(req.WithContext(core.WithRequestID(req.Context(), id)))
		},
	})
}

func requestID(ctx echo.Context) core.RequestID {
	return core.RequestIDFromContext(ctx.Request().Context())
}

func isHTMX(ctx echo.Context) bool {
	return strings.EqualFold(ctx.Request().Header.Get(headerHXRequest), "true")
}

type event struct {
	name   string
	detail interface{}
}

// trigger asks htmx to dispatch the given events on the requesting element.
// Events already set on the response are kept.
func trigger(ctx echo.Context, events ...event) error {
	header := ctx.Response().Header()
	all := make(map[string]interface{}, len(events))
	if prev := header.Get(headerHXTrigger); prev != "" {
		if err := json.Unmarshal([]byte(prev), &all); err != nil {
			return errors.Wrap(err, "decoding "+headerHXTrigger)
		}
	}
	for _, ev := range events {
		all[ev.name] = ev.detail
	}
	data, err := json.Marshal(all)
	if err != nil {
		return errors.Wrap(err, "encoding "+headerHXTrigger)
	}
	header.Set(headerHXTrigger, string(data))
	return nil
}

// redirectOrEmpty answers htmx requests with an empty 200 (the target gets removed)
// and plain form posts with a redirect to url.
func redirectOrEmpty(ctx echo.Context, url string) error {
	if isHTMX(ctx) {
		return ctx.HTML(http.StatusOK, "")
	}
	return ctx.Redirect(http.StatusSeeOther, url)
}

const confKey = "pageConf"

type pageConf struct {
	appName string
	build   string
	htmxSrc string
}

// pageConfMiddleware exposes the app name, build and htmx script to newPage.
func pageConfMiddleware(conf *core.Config) echo.MiddlewareFunc {
	pc := pageConf{appName: conf.AppName, build: conf.Build, htmxSrc: appfs.HTMXSrc()}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Set(confKey, pc)
			return next(ctx)
		}
	}
}
