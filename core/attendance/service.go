package attendance

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

// ErrSubmissionInFlight is returned when the same form is submitted while its previous save is pending.
var ErrSubmissionInFlight = errors.New("attendance is already being saved")

var nowFunc = time.Now

type (
	Repository interface {
		// RecordAttendance stores the counts for (subject, date); the backend overwrites an existing record.
		RecordAttendance(ctx context.Context, nr NewRecord) (Record, error)
		// QueryRecords applies AND on the set fields of filter.
		QueryRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate

		mu       sync.Mutex
		inFlight map[string]struct{}
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
		inFlight: make(map[string]struct{}),
	}
}

func formKey(nr NewRecord) string {
	return strconv.Itoa(nr.SubjectID) + "|" + nr.Date
}

func (svc *Service) acquire(key string) bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if _, busy := svc.inFlight[key]; busy {
		return false
	}
	svc.inFlight[key] = struct{}{}
	return true
}

func (svc *Service) release(key string) {
	svc.mu.Lock()
	delete(svc.inFlight, key)
	svc.mu.Unlock()
}

// Saving reports whether a save for (subjectID, date) is pending.
func (svc *Service) Saving(subjectID int, date string) bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	_, busy := svc.inFlight[formKey(NewRecord{SubjectID: subjectID, Date: date})]
	return busy
}

// Record validates nr and sends it to the backend exactly once.
// A concurrent submission for the same subject and date gets ErrSubmissionInFlight.
func (svc *Service) Record(ctx context.Context, nr NewRecord) (Record, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Record{}, err
	}
	if nr.Date > core.FormatDate(nowFunc()) {
		return Record{}, core.NewValidationError(errors.New(notFutureText), core.FieldError{Field: "date", Error: notFutureText})
	}

	key := formKey(nr)
	if !svc.acquire(key) {
		return Record{}, ErrSubmissionInFlight
	}
	defer svc.release(key)

	rec, err := svc.repo.RecordAttendance(ctx, nr)
	if err != nil {
		return Record{}, errors.Wrap(err, "recording attendance")
	}
	if rec.SubjectID == 0 {
		// the backend answered 2xx without echoing the record
		rec = Record{
			SubjectID:        nr.SubjectID,
			Date:             nr.Date,
			TotalLectures:    nr.TotalLectures,
			AttendedLectures: nr.AttendedLectures,
		}
	}
	return rec, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Record, error) {
	for _, d := range []string{filter.StartDate, filter.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(core.DateLayout, d); err != nil {
			msg := "dates must be formatted as YYYY-MM-DD"
			return nil, core.NewValidationError(errors.New(msg), core.FieldError{Field: "date", Error: msg})
		}
	}
	recs, err := svc.repo.QueryRecords(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}
