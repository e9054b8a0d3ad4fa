package analytics

import (
	"strconv"
)

// Requirement is the attendance percentage a subject is expected to reach.
const Requirement = 75.0

const warningFloor = 60.0

type (
	SubjectStats struct {
		SubjectID            int     `json:"subject_id"`
		SubjectName          string  `json:"subject_name"`
		TotalConducted       int     `json:"total_conducted"`
		TotalAttended        int     `json:"total_attended"`
		TotalAbsent          int     `json:"total_absent"`
		AttendancePercentage float64 `json:"attendance_percentage"`
	}

	Overall struct {
		TotalSubjects     int            `json:"total_subjects"`
		TotalConducted    int            `json:"total_conducted"`
		TotalAttended     int            `json:"total_attended"`
		TotalAbsent       int            `json:"total_absent"`
		OverallPercentage float64        `json:"overall_percentage"`
		SubjectStats      []SubjectStats `json:"subject_stats"`
	}
)

func (s SubjectStats) Tier() Tier             { return TierOf(s.AttendancePercentage) }
func (s SubjectStats) Percent() string        { return FormatPercent(s.AttendancePercentage) }
func (s SubjectStats) ProgressWidth() float64 { return ProgressWidth(s.AttendancePercentage) }

// IsEmpty reports whether there is nothing to show: no subjects are tracked.
func (o Overall) IsEmpty() bool { return o.TotalSubjects == 0 }

func (o Overall) Tier() Tier      { return TierOf(o.OverallPercentage) }
func (o Overall) Percent() string { return FormatPercent(o.OverallPercentage) }

// MeetsRequirement reports whether the overall percentage reached Requirement.
func (o Overall) MeetsRequirement() bool { return o.OverallPercentage >= Requirement }

// Insights are the static hints listed under the breakdown.
func (o Overall) Insights() []string {
	tracking := "You're tracking " + strconv.Itoa(o.TotalSubjects) + " subject"
	if o.TotalSubjects != 1 {
		tracking += "s"
	}
	last := "Try to attend more lectures to improve your percentage"
	if o.MeetsRequirement() {
		last = "Great job! You're meeting the attendance requirement! 🎉"
	}
	return []string{
		"Aim for at least 75% attendance in each subject",
		tracking,
		last,
	}
}

// Tier buckets a percentage for colouring.
type Tier int

const (
	TierCritical Tier = iota
	TierWarning
	TierGood
)

// TierOf maps p to good (>= 75), warning (>= 60) or critical.
func TierOf(p float64) Tier {
	switch {
	case p >= Requirement:
		return TierGood
	case p >= warningFloor:
		return TierWarning
	default:
		return TierCritical
	}
}

func (t Tier) String() string {
	switch t {
	case TierGood:
		return "good"
	case TierWarning:
		return "warning"
	default:
		return "critical"
	}
}

// FormatPercent renders p with one decimal, e.g. "82.5%".
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

// ProgressWidth clamps p to [0, 100] for a progress bar.
func ProgressWidth(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
