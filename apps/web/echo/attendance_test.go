package echoweb

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mahudhurio/core/attendance"
)

func attendanceInput(subjectID, total, attended string) url.Values {
	return url.Values{
		"subject_id":        {subjectID},
		"subject_name":      {"Maths"},
		"date":              {"2024-03-08"},
		"total_lectures":    {total},
		"attended_lectures": {attended},
	}
}

func TestAttendanceViews_View(t *testing.T) {
	fixNow(t, time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local))
	f := setup(t)

	t.Run("no subjects", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/views/attendance", nil, true)
		checkResponse(t, rec, http.StatusOK, "No subjects found", `href="/"`, `value="2024-03-10"`, `max="2024-03-10"`)
		assert.NotContains(t, rec.Body.String(), "Tip:")
		assert.Empty(t, f.backend.CallsTo(http.MethodPost, "/attendance"))
	})

	f.backend.SeedSubjects("Maths", "Physics")
	f.run(t, []httpTest{
		{
			name:     "today by default",
			method:   http.MethodGet,
			path:     "/views/attendance",
			htmx:     true,
			wantCode: http.StatusOK,
			wantBody: []string{
				`id="attendance-1"`, `id="attendance-2"`, "Maths", "Physics",
				"Enter 0 for both fields", `name="date" value="2024-03-10"`, "Save Attendance",
			},
		},
		{
			name:     "past date",
			method:   http.MethodGet,
			path:     "/views/attendance?date=2024-03-01",
			htmx:     true,
			wantCode: http.StatusOK,
			wantBody: []string{`value="2024-03-01"`, `max="2024-03-10"`},
		},
		{
			name:     "future date is clamped",
			method:   http.MethodGet,
			path:     "/views/attendance?date=2024-03-11",
			htmx:     true,
			wantCode: http.StatusOK,
			wantBody: []string{`id="attendance-date" type="date" name="date" class="input-field" value="2024-03-10"`},
		},
		{
			name:     "garbage date is clamped",
			method:   http.MethodGet,
			path:     "/views/attendance?date=tomorrow",
			htmx:     true,
			wantCode: http.StatusOK,
			wantBody: []string{`value="2024-03-10"`},
		},
	})

	t.Run("backend down", func(t *testing.T) {
		f.backend.FailWith(http.MethodGet, "/subjects", http.StatusBadGateway)
		defer f.backend.Heal()

		rec := f.do(http.MethodGet, "/views/attendance", nil, true)
		checkResponse(t, rec, http.StatusOK, "No subjects found")
		assert.True(t, f.logger.Logged("error", "loading subjects"))
	})
}

func TestAttendanceViews_Preview(t *testing.T) {
	f := setup(t)

	rec := f.do(http.MethodPost, "/views/attendance/preview", attendanceInput("1", "5", "3"), true)
	checkResponse(t, rec, http.StatusOK, `Absent: <span class="strong">2</span>`)

	for _, in := range [][2]string{{"", "3"}, {"5", ""}, {"five", "3"}} {
		rec := f.do(http.MethodPost, "/views/attendance/preview", attendanceInput("1", in[0], in[1]), true)
		checkResponse(t, rec, http.StatusOK)
		assert.NotContains(t, rec.Body.String(), "Absent")
	}
	assert.Empty(t, f.backend.Calls())
}

func TestAttendanceViews_Submit(t *testing.T) {
	f := setup(t)
	f.backend.SeedSubjects("Maths")

	f.run(t, []httpTest{
		{
			name:      "negative total",
			method:    http.MethodPost,
			path:      "/attendance",
			form:      attendanceInput("1", "-1", "0"),
			htmx:      true,
			wantCode:  http.StatusBadRequest,
			wantAlert: "Values cannot be negative",
		},
		{
			name:      "negative wins over exceeding",
			method:    http.MethodPost,
			path:      "/attendance",
			form:      attendanceInput("1", "2", "-3"),
			htmx:      true,
			wantCode:  http.StatusBadRequest,
			wantAlert: "Values cannot be negative",
		},
		{
			name:      "attended exceeds total",
			method:    http.MethodPost,
			path:      "/attendance",
			form:      attendanceInput("1", "3", "5"),
			htmx:      true,
			wantCode:  http.StatusBadRequest,
			wantAlert: "Attended lectures cannot exceed total lectures",
		},
		{
			name:      "blank field",
			method:    http.MethodPost,
			path:      "/attendance",
			form:      attendanceInput("1", "", "1"),
			htmx:      true,
			wantCode:  http.StatusBadRequest,
			wantAlert: "Total lectures is required",
		},
	})
	assert.Empty(t, f.backend.CallsTo(http.MethodPost, "/attendance"), "invalid input never reaches the backend")

	t.Run("saved", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/attendance", attendanceInput("1", "4", "3"), true)
		checkResponse(t, rec, http.StatusOK,
			`id="attendance-1"`, "✓ Saved!", " disabled>", `data-state="saved"`,
			`hx-trigger="load delay:2000ms"`, `hx-get="/views/attendance/forms/1?date=2024-03-08&amp;name=Maths"`,
			`name="total_lectures" class="input-field" placeholder="0" value=""`,
		)

		events := triggered(t, rec)
		assert.Equal(t, map[string]interface{}{"subject_id": "1", "date": "2024-03-08"}, events[eventAttendanceSaved])

		calls := f.backend.CallsTo(http.MethodPost, "/attendance")
		require.Len(t, calls, 1)
		assert.JSONEq(t, `{"subject_id": 1, "date": "2024-03-08", "total_lectures": 4, "attended_lectures": 3}`, calls[0].Body)
	})

	t.Run("zero lectures", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/attendance", attendanceInput("1", "0", "0"), true)
		checkResponse(t, rec, http.StatusOK, "✓ Saved!")
		require.Len(t, f.backend.Records(), 1, "same subject and day")
		assert.Equal(t, 0, f.backend.Records()[0].TotalLectures)
	})

	t.Run("backend failure alerts", func(t *testing.T) {
		f.backend.FailWith(http.MethodPost, "/attendance", http.StatusInternalServerError)
		defer f.backend.Heal()

		rec := f.do(http.MethodPost, "/attendance", attendanceInput("1", "4", "3"), true)
		checkResponse(t, rec, http.StatusBadGateway)
		assert.Equal(t, "Error saving attendance", triggered(t, rec)[eventShowAlert])
		assert.NotContains(t, triggered(t, rec), eventAttendanceSaved)
		assert.True(t, f.logger.Logged("error", "recording attendance"))
	})

	t.Run("plain form post redirects", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/attendance", attendanceInput("1", "2", "2"), false)
		checkResponse(t, rec, http.StatusSeeOther)
		assert.Equal(t, "/attendance?date=2024-03-08", rec.Header().Get("Location"))
	})
}

func TestAttendanceViews_Form(t *testing.T) {
	fixNow(t, time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local))
	f := setup(t)
	f.backend.SeedSubjects("Maths")

	rec := f.do(http.MethodGet, "/views/attendance/forms/1?date=2024-03-08&name=Maths", nil, true)
	checkResponse(t, rec, http.StatusOK, `data-state="idle"`, "Save Attendance", "Maths", `name="date" value="2024-03-08"`)
	assert.NotContains(t, rec.Body.String(), "hx-trigger=\"load")
	assert.Empty(t, f.backend.Calls(), "the name came with the request")

	rec = f.do(http.MethodGet, "/views/attendance/forms/1", nil, true)
	checkResponse(t, rec, http.StatusOK, "Maths", `name="date" value="2024-03-10"`)
	assert.Len(t, f.backend.CallsTo(http.MethodGet, "/subjects/:id"), 1)
}

func TestAttendanceForm_States(t *testing.T) {
	form := attendanceForm{SubjectID: 3, SubjectName: "Art & Design", Date: "2024-03-08"}
	assert.Equal(t, "/views/attendance/forms/3?date=2024-03-08&name=Art+%26+Design", form.RevertURL())
	assert.Equal(t, "2000ms", form.RevertDelay())
	assert.False(t, form.Preview().OK)

	form.State = attendance.FormSaved
	assert.True(t, form.Saved())
	form.Total, form.Attended = "3", "1"
	assert.Equal(t, absentPreview{SubjectID: 3, Absent: 2, OK: true}, form.Preview())
}
