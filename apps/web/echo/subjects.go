package echoweb

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/subject"
)

type subjectViews struct {
	svc    *subject.Service
	logger core.Logger
}

func registerSubjectViews(e *echo.Echo, svc *subject.Service, logger core.Logger) {
	v := subjectViews{svc: svc, logger: logger}

	e.GET("/", v.page)

	vg := e.Group("/views/subjects")
	vg.GET("", v.list)
	vg.GET("/add-form", v.addForm)
	vg.GET("/:id", v.card)
	vg.GET("/:id/confirm", v.confirm)

	sg := e.Group("/subjects")
	sg.POST("", v.create)
	sg.DELETE("/:id", v.destroy)
	sg.POST("/:id/delete", v.destroy)
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// Handlers

func (v *subjectViews) page(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "subjects", newPage(ctx, "My Subjects", "/views/subjects"))
}

// list renders the empty state when the subjects cannot be fetched.
func (v *subjectViews) list(ctx echo.Context) error {
	subjects, err := v.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		v.logger.Error("echoweb.subjects: loading subjects", err, requestID(ctx))
		subjects = nil
	}
	return ctx.Render(http.StatusOK, "subjects-view", newSubjectsView(subjects))
}

func (v *subjectViews) addForm(ctx echo.Context) error {
	state := subject.ParseAddFormState(ctx.QueryParam("state"))
	return ctx.Render(http.StatusOK, "subjects-add-form", addForm{State: state})
}

func (v *subjectViews) card(ctx echo.Context) error {
	return v.renderCard(ctx, subject.DeleteIdle.Cancel())
}

func (v *subjectViews) confirm(ctx echo.Context) error {
	return v.renderCard(ctx, subject.DeleteIdle.Request())
}

func (v *subjectViews) renderCard(ctx echo.Context, state subject.DeleteState) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	sub, err := v.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.Render(http.StatusOK, "subject-card", subjectCard{Subject: sub, State: state})
}

// create appends the new card to the list and closes the add form.
// A blank name is ignored: nothing is sent and nothing is swapped.
func (v *subjectViews) create(ctx echo.Context) error {
	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if core.CleanString(data.Name) == "" {
		return ctx.NoContent(http.StatusNoContent)
	}

	sub, err := v.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return newActionError("Error adding subject", err)
	}
	if !isHTMX(ctx) {
		return ctx.Redirect(http.StatusSeeOther, "/")
	}

	// the card is appended to the list, the closed form is swapped out of band
	var buf bytes.Buffer
	closed := addForm{State: subject.AddFormVisible.Created(), OOB: true}
	for _, part := range []struct {
		name string
		data interface{}
	}{
		{"subject-card", subjectCard{Subject: sub}},
		{"subjects-add-form", closed},
	} {
		var b bytes.Buffer
		if err := ctx.Echo().Renderer.Render(&b, part.name, part.data, ctx); err != nil {
			return err
		}
		buf.Write(bytes.TrimSpace(b.Bytes()))
	}
	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}

// destroy removes exactly the deleted card; nothing else is fetched again.
func (v *subjectViews) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := v.svc.Delete(ctx.Request().Context(), id); err != nil {
		return newActionError("Error deleting subject", err)
	}
	return redirectOrEmpty(ctx, "/")
}
