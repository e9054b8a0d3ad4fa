package echoweb

import (
	"net/url"
	"strconv"

	"github.com/trezcool/mahudhurio/core/analytics"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/subject"
)

// View models handed to the templates.
type (
	subjectsView struct {
		Subjects []subjectCard
		AddForm  addForm
	}

	addForm struct {
		State subject.AddFormState
		OOB   bool // swapped out of band after a create
	}

	subjectCard struct {
		subject.Subject
		State subject.DeleteState
	}

	attendanceView struct {
		Date  string
		Today string
		Forms []attendanceForm
	}

	attendanceForm struct {
		SubjectID   int
		SubjectName string
		Date        string
		Total       string
		Attended    string
		State       attendance.FormState
	}

	absentPreview struct {
		SubjectID int
		Absent    int
		OK        bool
	}

	analyticsView struct {
		analytics.Overall
		ReportEnabled bool
		Recipient     string
	}
)

func (f addForm) Visible() bool     { return f.State == subject.AddFormVisible }
func (f addForm) ToggleURL() string { return addFormURL(f.State.Toggle()) }
func (f addForm) CancelURL() string { return addFormURL(f.State.Cancel()) }
func addFormURL(s subject.AddFormState) string {
	return "/views/subjects/add-form?state=" + s.String()
}

func (c subjectCard) Confirming() bool { return c.State == subject.DeleteConfirming }
func (c subjectCard) ConfirmURL() string {
	return "/views/subjects/" + strconv.Itoa(c.ID) + "/confirm"
}
func (c subjectCard) CancelURL() string { return "/views/subjects/" + strconv.Itoa(c.ID) }
func (c subjectCard) DeleteURL() string { return "/subjects/" + strconv.Itoa(c.ID) }

func newSubjectsView(subjects []subject.Subject) subjectsView {
	cards := make([]subjectCard, len(subjects))
	for i, s := range subjects {
		cards[i] = subjectCard{Subject: s}
	}
	return subjectsView{Subjects: cards}
}

func newAttendanceForm(s subject.Subject, date string) attendanceForm {
	return attendanceForm{SubjectID: s.ID, SubjectName: s.Name, Date: date}
}

// RevertURL reloads the idle form once the saved confirmation expired.
func (f attendanceForm) RevertURL() string {
	q := url.Values{}
	q.Set("date", f.Date)
	q.Set("name", f.SubjectName)
	return "/views/attendance/forms/" + strconv.Itoa(f.SubjectID) + "?" + q.Encode()
}

func (f attendanceForm) Saved() bool { return f.State == attendance.FormSaved }

// RevertDelay is the htmx trigger delay of RevertURL.
func (f attendanceForm) RevertDelay() string {
	return strconv.FormatInt(attendance.SavedFor.Milliseconds(), 10) + "ms"
}

func (f attendanceForm) Preview() absentPreview {
	absent, ok := attendance.PreviewAbsent(f.Total, f.Attended)
	return absentPreview{SubjectID: f.SubjectID, Absent: absent, OK: ok}
}
