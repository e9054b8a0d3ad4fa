package echoweb

import (
	"context"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/analytics"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/report"
	"github.com/trezcool/mahudhurio/core/subject"
	appfs "github.com/trezcool/mahudhurio/fs"
)

type (
	// Pinger checks that the backend is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		SubjectSvc    *subject.Service
		AttendanceSvc *attendance.Service
		AnalyticsSvc  *analytics.Service
		Reporter      *report.Reporter
		Backend       Pinger
		Translator    ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		renderer *renderer
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) (Server, error) {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	if err := s.setup(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *server) setup() error {
	conf := s.deps.Conf

	var (
		tmplFS fs.FS
		err    error
	)
	if conf.Server.TemplatesDir != "" {
		tmplFS = os.DirFS(conf.Server.TemplatesDir)
	} else if tmplFS, err = fs.Sub(appfs.FS, "templates/web"); err != nil {
		return errors.Wrap(err, "opening embedded templates")
	}
	if s.renderer, err = newRenderer(tmplFS, s.deps.Logger); err != nil {
		return err
	}
	if conf.Server.TemplatesDir != "" {
		if err = s.renderer.watch(conf.Server.TemplatesDir); err != nil {
			return err
		}
	}

	s.app.HideBanner = true
	s.app.Renderer = s.renderer
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(requestIDMiddleware())
	s.app.Use(pageConfMiddleware(conf))
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	staticFS, err := fs.Sub(appfs.FS, "static")
	if err != nil {
		return errors.Wrap(err, "opening embedded static files")
	}
	s.app.StaticFS("/static", staticFS)

	s.app.GET("/healthz", s.healthz)

	registerSubjectViews(s.app, s.deps.SubjectSvc, s.deps.Logger)
	registerAttendanceViews(s.app, s.deps.SubjectSvc, s.deps.AttendanceSvc, s.deps.Logger)
	registerAnalyticsViews(s.app, s.deps.AnalyticsSvc, s.deps.Reporter, s.deps.Logger)

	return nil
}

func (s *server) Start() {
	srv := &http.Server{
		Addr:         s.deps.Conf.Server.Address,
		ReadTimeout:  s.deps.Conf.Server.ReadTimeout,
		WriteTimeout: s.deps.Conf.Server.WriteTimeout,
	}
	if err := s.app.StartServer(srv); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	s.renderer.close()
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	s.renderer.close()
	return s.app.Close()
}

func (s *server) Errors() <-chan error { return s.errors }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

type health struct {
	Status  string `json:"status"`
	Build   string `json:"build"`
	Backend string `json:"backend"`
}

// healthz always answers 200 while the process is up; the backend state is informative.
func (s *server) healthz(c echo.Context) error {
	h := health{Status: "ok", Build: s.deps.Conf.Build, Backend: "ok"}
	if err := s.deps.Backend.Ping(c.Request().Context()); err != nil {
		s.deps.Logger.Warn("healthz: backend ping failed", err, requestID(c))
		h.Backend = "unavailable"
	}
	return c.JSON(http.StatusOK, h)
}
