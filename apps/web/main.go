package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	echoweb "github.com/trezcool/mahudhurio/apps/web/echo"
	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/analytics"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/report"
	"github.com/trezcool/mahudhurio/core/subject"
	appfs "github.com/trezcool/mahudhurio/fs"
	emailsvc "github.com/trezcool/mahudhurio/services/email"
	logsvc "github.com/trezcool/mahudhurio/services/logger"
	"github.com/trezcool/mahudhurio/storage/remote"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

	client := remote.NewClient(conf.Backend)
	subjectSvc := subject.NewService(remote.NewSubjectRepository(client), validate)
	attendanceSvc := attendance.NewService(remote.NewAttendanceRepository(client), validate)
	analyticsSvc := analytics.NewService(remote.NewAnalyticsRepository(client))
	reporter := report.NewReporter(analyticsSvc, mailSvc, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q, backend %s", conf.Build, client.BaseURL()))
	defer logger.Info("Application stopped")

	core.ParseEmailTemplates(appfs.FS, "templates/email", conf.TestMode, logger)

	scheduler := startScheduler(conf, reporter, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus metrics of the backend calls.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("backend").Set(client.BaseURL())
	http.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Web Service

	server, err := echoweb.NewServer(
		echoweb.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			SubjectSvc:    subjectSvc,
			AttendanceSvc: attendanceSvc,
			AnalyticsSvc:  analyticsSvc,
			Reporter:      reporter,
			Backend:       client,
			Translator:    translator,
		},
	)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up server: %v", err), err)
	}

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		if scheduler != nil {
			scheduler.Stop()
		}

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// startScheduler starts the weekly report job when it is enabled and has somewhere to go.
func startScheduler(conf *core.Config, reporter *report.Reporter, logger core.Logger) *report.Scheduler {
	if !conf.Report.Weekly {
		return nil
	}
	if !reporter.Enabled() {
		logger.Warn("weekly report requested without a valid report.recipient: skipped")
		return nil
	}

	scheduler, err := report.NewScheduler(reporter, conf.Report.Schedule, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up report scheduler: %v", err), err)
	}
	scheduler.Start()
	logger.Info(fmt.Sprintf("weekly report to %s, next run %s", reporter.Recipient().Address, scheduler.NextRun()))
	return scheduler
}
