package echoweb

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/subject"
)

const (
	alertUnavailable = "The attendance service is unavailable, please try again"
	alertServerError = "Something went wrong"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

// actionError attaches the alert shown to the user when a user initiated action fails.
type actionError struct {
	alert string
	err   error
}

func newActionError(alert string, err error) error {
	if err == nil {
		return nil
	}
	return &actionError{alert: alert, err: err}
}

func (e *actionError) Error() string { return e.alert + ": " + e.err.Error() }
func (e *actionError) Cause() error  { return e.err }
func (e *actionError) Unwrap() error { return e.err }

func actionAlert(err error, fallback string) string {
	var aErr *actionError
	if errors.As(err, &aErr) {
		return aErr.alert
	}
	return fallback
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// htmx requests get the message as a "showAlert" event; full page requests get the error page.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code    int
			message string
		)

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case validator.ValidationErrors, *core.ValidationError:
			code = http.StatusBadRequest
			message = core.FirstMessage(err, translator)
		case *core.RemoteError:
			code = http.StatusBadGateway
			message = actionAlert(err, alertUnavailable)
			logger.Error(err.Error(), err, requestID(ctx), map[string]interface{}{"body": origErr.Body})
		default:
			switch origErr {
			case subject.ErrNotFound:
				code = http.StatusNotFound
				message = actionAlert(err, "Subject not found")
			case attendance.ErrSubmissionInFlight:
				code = http.StatusConflict
				message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				message = actionAlert(err, alertServerError)
				logger.Error(http.StatusText(code), errors.Wrap(err, message), requestID(ctx))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Response().Committed {
			return
		}
		if err := respondError(ctx, code, message); err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

func respondError(ctx echo.Context, code int, message string) error {
	if ctx.Request().Method == http.MethodHead { // Issue #608
		return ctx.NoContent(code)
	}
	if isHTMX(ctx) {
		if err := trigger(ctx, event{name: eventShowAlert, detail: message}); err != nil {
			return err
		}
		return ctx.String(code, message)
	}
	return ctx.Render(code, "error", newPage(ctx, "Error", "").withError(code, message))
}
