package attendance

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

type (
	// Record is the backend's view of one subject's lectures on one day.
	Record struct {
		ID               int    `json:"id,omitempty"`
		SubjectID        int    `json:"subject_id"`
		SubjectName      string `json:"subject_name,omitempty"`
		Date             string `json:"date"` // YYYY-MM-DD
		TotalLectures    int    `json:"total_lectures"`
		AttendedLectures int    `json:"attended_lectures"`
		AbsentLectures   int    `json:"absent_lectures,omitempty"`
	}

	// NewRecord is the body of POST /attendance.
	NewRecord struct {
		SubjectID        int    `json:"subject_id" form:"subject_id" validate:"gt=0"`
		Date             string `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
		TotalLectures    int    `json:"total_lectures" form:"total_lectures" validate:"gte=0"`
		AttendedLectures int    `json:"attended_lectures" form:"attended_lectures" validate:"gte=0,ltefield=TotalLectures"`
	}

	// FormInput is the attendance form as typed by the user: numbers arrive as text
	// so that a blank field can be told apart from a zero.
	FormInput struct {
		SubjectID   int    `form:"subject_id"`
		SubjectName string `form:"subject_name"`
		Date        string `form:"date"`
		Total       string `form:"total_lectures"`
		Attended    string `form:"attended_lectures"`
	}

	QueryFilter struct {
		SubjectID int
		StartDate string // YYYY-MM-DD, inclusive
		EndDate   string // YYYY-MM-DD, inclusive
	}
)

// Absent is what the backend derives for the record.
func (r Record) Absent() int {
	if r.AbsentLectures != 0 {
		return r.AbsentLectures
	}
	return r.TotalLectures - r.AttendedLectures
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.Date = core.CleanString(nr.Date)
	return validate.Struct(nr)
}

// Parse converts the typed fields. A blank or non numeric count is a validation error;
// the range rules are left to NewRecord.Validate.
func (in FormInput) Parse() (NewRecord, error) {
	total, err := parseCount("total_lectures", "Total lectures", in.Total)
	if err != nil {
		return NewRecord{}, err
	}
	attended, err := parseCount("attended_lectures", "Lectures attended", in.Attended)
	if err != nil {
		return NewRecord{}, err
	}
	return NewRecord{
		SubjectID:        in.SubjectID,
		Date:             core.CleanString(in.Date),
		TotalLectures:    total,
		AttendedLectures: attended,
	}, nil
}

func parseCount(field, label, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		msg := label + " is required"
		return 0, core.NewValidationError(errors.New(msg), core.FieldError{Field: field, Error: msg})
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		msg := label + " must be a whole number"
		return 0, core.NewValidationError(errors.New(msg), core.FieldError{Field: field, Error: msg})
	}
	return n, nil
}

// PreviewAbsent returns total - attended once both fields hold integers.
// The result is not range checked: it previews what was typed.
func PreviewAbsent(total, attended string) (int, bool) {
	t, err := strconv.Atoi(strings.TrimSpace(total))
	if err != nil {
		return 0, false
	}
	a, err := strconv.Atoi(strings.TrimSpace(attended))
	if err != nil {
		return 0, false
	}
	return t - a, true
}

// SelectDate returns the day to mark attendance for.
// Blank, malformed and future dates all fall back to today.
func SelectDate(raw string, now time.Time) string {
	today := core.FormatDate(now)
	d, err := time.ParseInLocation(core.DateLayout, strings.TrimSpace(raw), now.Location())
	if err != nil {
		return today
	}
	if s := core.FormatDate(d); s < today {
		return s
	}
	return today
}

// FormState is the lifecycle of one attendance form.
type FormState int

const (
	FormIdle FormState = iota
	FormSaving
	FormSaved
)

// SavedFor is how long the "Saved" confirmation stays up before the form resets.
const SavedFor = 2 * time.Second

func (s FormState) String() string {
	switch s {
	case FormSaving:
		return "saving"
	case FormSaved:
		return "saved"
	default:
		return "idle"
	}
}

// Disabled reports whether the submit control accepts clicks.
func (s FormState) Disabled() bool { return s != FormIdle }

func (s FormState) ButtonLabel() string {
	switch s {
	case FormSaving:
		return "Saving..."
	case FormSaved:
		return "✓ Saved!"
	default:
		return "Save Attendance"
	}
}

// Submit starts a save. Only an idle form can be submitted.
func (s FormState) Submit() (FormState, bool) {
	if s != FormIdle {
		return s, false
	}
	return FormSaving, true
}

// Done ends a save: success shows the confirmation, failure goes back to idle.
func (s FormState) Done(err error) FormState {
	if err != nil {
		return FormIdle
	}
	return FormSaved
}

// Expire clears the confirmation.
func (s FormState) Expire() FormState {
	if s == FormSaved {
		return FormIdle
	}
	return s
}
