package echoweb

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/subject"
)

var nowFunc = time.Now

type attendanceViews struct {
	subjects *subject.Service
	svc      *attendance.Service
	logger   core.Logger
}

func registerAttendanceViews(e *echo.Echo, subjects *subject.Service, svc *attendance.Service, logger core.Logger) {
	v := attendanceViews{subjects: subjects, svc: svc, logger: logger}

	e.GET("/attendance", v.page)
	e.POST("/attendance", v.submit)

	vg := e.Group("/views/attendance")
	vg.GET("", v.view)
	vg.GET("/forms/:id", v.form)
	vg.POST("/preview", v.preview)
}

// Handlers

func (v *attendanceViews) page(ctx echo.Context) error {
	viewURL := "/views/attendance"
	if date := ctx.QueryParam("date"); date != "" {
		viewURL += "?" + url.Values{"date": {date}}.Encode()
	}
	return ctx.Render(http.StatusOK, "attendance", newPage(ctx, "Mark Attendance", viewURL))
}

// view lists one form per subject for the selected day.
// It renders the "no subjects" prompt when the subjects cannot be fetched.
func (v *attendanceViews) view(ctx echo.Context) error {
	now := nowFunc()
	data := attendanceView{
		Date:  attendance.SelectDate(ctx.QueryParam("date"), now),
		Today: core.FormatDate(now),
	}

	subjects, err := v.subjects.QueryAll(ctx.Request().Context())
	if err != nil {
		v.logger.Error("echoweb.attendance: loading subjects", err, requestID(ctx))
		subjects = nil
	}
	data.Forms = make([]attendanceForm, len(subjects))
	for i, s := range subjects {
		data.Forms[i] = v.newForm(s, data.Date)
	}
	return ctx.Render(http.StatusOK, "attendance-view", data)
}

func (v *attendanceViews) newForm(s subject.Subject, date string) attendanceForm {
	f := newAttendanceForm(s, date)
	if v.svc.Saving(s.ID, date) {
		f.State, _ = f.State.Submit()
	}
	return f
}

// form renders a fresh form; it replaces a form once its saved confirmation expired.
func (v *attendanceViews) form(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	sub := subject.Subject{ID: id, Name: ctx.QueryParam("name")}
	if sub.Name == "" {
		if sub, err = v.subjects.GetByID(ctx.Request().Context(), id); err != nil {
			return err
		}
	}
	date := attendance.SelectDate(ctx.QueryParam("date"), nowFunc())
	return ctx.Render(http.StatusOK, "attendance-form", v.newForm(sub, date))
}

func (v *attendanceViews) preview(ctx echo.Context) error {
	var in attendance.FormInput
	if err := ctx.Bind(&in); err != nil {
		return errors.Wrap(err, "binding to FormInput")
	}
	f := attendanceForm{SubjectID: in.SubjectID, Total: in.Total, Attended: in.Attended}
	return ctx.Render(http.StatusOK, "attendance-preview", f.Preview())
}

// submit saves the counts. On failure nothing is swapped, so the typed values stay;
// on success the form comes back cleared in its saved state.
func (v *attendanceViews) submit(ctx echo.Context) error {
	var in attendance.FormInput
	if err := ctx.Bind(&in); err != nil {
		return errors.Wrap(err, "binding to FormInput")
	}
	nr, err := in.Parse()
	if err != nil {
		return err
	}

	f := attendanceForm{SubjectID: in.SubjectID, SubjectName: in.SubjectName, Date: nr.Date}
	f.State, _ = f.State.Submit()
	_, err = v.svc.Record(ctx.Request().Context(), nr)
	if f.State = f.State.Done(err); err != nil {
		return newActionError("Error saving attendance", err)
	}

	if !isHTMX(ctx) {
		return ctx.Redirect(http.StatusSeeOther, "/attendance?"+url.Values{"date": {nr.Date}}.Encode())
	}
	saved := map[string]string{"subject_id": strconv.Itoa(nr.SubjectID), "date": nr.Date}
	if err := trigger(ctx, event{name: eventAttendanceSaved, detail: saved}); err != nil {
		return err
	}
	return ctx.Render(http.StatusOK, "attendance-form", f)
}
