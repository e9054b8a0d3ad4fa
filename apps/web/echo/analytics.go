package echoweb

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/analytics"
	"github.com/trezcool/mahudhurio/core/report"
)

type analyticsViews struct {
	svc      *analytics.Service
	reporter *report.Reporter
	logger   core.Logger
}

func registerAnalyticsViews(e *echo.Echo, svc *analytics.Service, reporter *report.Reporter, logger core.Logger) {
	v := analyticsViews{svc: svc, reporter: reporter, logger: logger}

	e.GET("/analytics", v.page)
	e.GET("/analytics/export.xlsx", v.export)
	e.POST("/analytics/report", v.sendReport)
	e.GET("/views/analytics", v.view)
}

// Handlers

func (v *analyticsViews) page(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "analytics", newPage(ctx, "Attendance Analytics", "/views/analytics"))
}

// view renders the "no data" state when the analytics cannot be fetched.
func (v *analyticsViews) view(ctx echo.Context) error {
	o, err := v.svc.Overall(ctx.Request().Context())
	if err != nil {
		v.logger.Error("echoweb.analytics: loading analytics", err, requestID(ctx))
	}
	data := analyticsView{Overall: o, ReportEnabled: v.reporter.Enabled()}
	if data.ReportEnabled {
		data.Recipient = v.reporter.Recipient().Address
	}
	return ctx.Render(http.StatusOK, "analytics-view", data)
}

func (v *analyticsViews) export(ctx echo.Context) error {
	o, err := v.svc.Overall(ctx.Request().Context())
	if err != nil {
		return err
	}
	now := nowFunc()
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, o, now); err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+report.Filename(now)+`"`)
	return ctx.Blob(http.StatusOK, report.XLSXContentType, buf.Bytes())
}

func (v *analyticsViews) sendReport(ctx echo.Context) error {
	if !v.reporter.Enabled() {
		return errHttpNotFound
	}
	if err := v.reporter.SendReport(ctx.Request().Context()); err != nil {
		return newActionError("Error sending report", err)
	}
	if err := trigger(ctx, event{name: eventShowAlert, detail: "Report sent to " + v.reporter.Recipient().Address}); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
