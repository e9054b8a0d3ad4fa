package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mahudhurio/core"
)

type repoMock struct {
	mu      sync.Mutex
	calls   []NewRecord
	block   chan struct{} // when set, RecordAttendance waits on it
	started chan struct{}
	err     error
}

func (r *repoMock) RecordAttendance(_ context.Context, nr NewRecord) (Record, error) {
	r.mu.Lock()
	r.calls = append(r.calls, nr)
	r.mu.Unlock()
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.block != nil {
		<-r.block
	}
	if r.err != nil {
		return Record{}, r.err
	}
	return Record{
		ID:               1,
		SubjectID:        nr.SubjectID,
		Date:             nr.Date,
		TotalLectures:    nr.TotalLectures,
		AttendedLectures: nr.AttendedLectures,
		AbsentLectures:   nr.TotalLectures - nr.AttendedLectures,
	}, nil
}

func (r *repoMock) QueryRecords(context.Context, QueryFilter) ([]Record, error) { return nil, nil }

func (r *repoMock) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func setupValidation() (*validator.Validate, func(error) string) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, func(err error) string { return core.FirstMessage(err, translator) }
}

func fixNow(t *testing.T, now time.Time) {
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = time.Now })
}

func TestService_Record_Validation(t *testing.T) {
	fixNow(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	validate, message := setupValidation()

	tests := []struct {
		name    string
		rec     NewRecord
		wantMsg string
	}{
		{name: "negative total", rec: NewRecord{SubjectID: 1, Date: "2024-03-10", TotalLectures: -1, AttendedLectures: 0}, wantMsg: gteText},
		{name: "negative attended", rec: NewRecord{SubjectID: 1, Date: "2024-03-10", TotalLectures: 3, AttendedLectures: -2}, wantMsg: gteText},
		{name: "negative wins over exceed", rec: NewRecord{SubjectID: 1, Date: "2024-03-10", TotalLectures: -1, AttendedLectures: 5}, wantMsg: gteText},
		{name: "attended exceeds total", rec: NewRecord{SubjectID: 1, Date: "2024-03-10", TotalLectures: 3, AttendedLectures: 4}, wantMsg: lteFieldText},
		{name: "bad date", rec: NewRecord{SubjectID: 1, Date: "10/03/2024", TotalLectures: 3, AttendedLectures: 2}, wantMsg: "date must be a date formatted as YYYY-MM-DD"},
		{name: "future date", rec: NewRecord{SubjectID: 1, Date: "2024-03-11", TotalLectures: 3, AttendedLectures: 2}, wantMsg: notFutureText},
		{name: "no subject", rec: NewRecord{Date: "2024-03-10", TotalLectures: 3, AttendedLectures: 2}, wantMsg: "subject_id is invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &repoMock{}
			svc := NewService(repo, validate)

			_, err := svc.Record(context.Background(), tt.rec)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, message(err))
			assert.Zero(t, repo.callCount(), "no backend call expected")
		})
	}
}

func TestService_Record(t *testing.T) {
	fixNow(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	validate, _ := setupValidation()

	tests := []struct {
		name string
		rec  NewRecord
	}{
		{name: "all attended", rec: NewRecord{SubjectID: 1, Date: "2024-03-10", TotalLectures: 3, AttendedLectures: 3}},
		{name: "none held", rec: NewRecord{SubjectID: 1, Date: "2024-03-09", TotalLectures: 0, AttendedLectures: 0}},
		{name: "some missed", rec: NewRecord{SubjectID: 2, Date: "2024-03-01", TotalLectures: 5, AttendedLectures: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &repoMock{}
			svc := NewService(repo, validate)

			rec, err := svc.Record(context.Background(), tt.rec)
			require.NoError(t, err)
			require.Equal(t, 1, repo.callCount())
			assert.Equal(t, tt.rec, repo.calls[0])
			assert.Equal(t, tt.rec.TotalLectures-tt.rec.AttendedLectures, rec.Absent())
			assert.False(t, svc.Saving(tt.rec.SubjectID, tt.rec.Date))
		})
	}
}

func TestService_Record_SingleFlight(t *testing.T) {
	fixNow(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	validate, _ := setupValidation()

	repo := &repoMock{block: make(chan struct{}), started: make(chan struct{}, 1)}
	svc := NewService(repo, validate)
	nr := NewRecord{SubjectID: 1, Date: "2024-03-10", TotalLectures: 2, AttendedLectures: 1}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Record(context.Background(), nr)
		done <- err
	}()
	<-repo.started
	assert.True(t, svc.Saving(1, "2024-03-10"))

	// same form: rejected without a call
	_, err := svc.Record(context.Background(), nr)
	assert.Equal(t, ErrSubmissionInFlight, err)

	// another subject is independent
	repo.started = nil
	other := nr
	other.SubjectID = 2
	otherDone := make(chan error, 1)
	go func() {
		_, err := svc.Record(context.Background(), other)
		otherDone <- err
	}()

	close(repo.block)
	require.NoError(t, <-done)
	require.NoError(t, <-otherDone)
	assert.Equal(t, 2, repo.callCount())

	// released once finished
	_, err = svc.Record(context.Background(), nr)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.callCount())
}

func TestService_Record_RemoteFailure(t *testing.T) {
	fixNow(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	validate, _ := setupValidation()

	repo := &repoMock{err: &core.RemoteError{Operation: "recording attendance", StatusCode: 500}}
	svc := NewService(repo, validate)

	_, err := svc.Record(context.Background(), NewRecord{SubjectID: 1, Date: "2024-03-10", TotalLectures: 1, AttendedLectures: 1})
	require.Error(t, err)
	assert.True(t, core.IsRemote(err))
	assert.False(t, svc.Saving(1, "2024-03-10"), "guard must be released on failure")
}

func TestService_Query_BadDates(t *testing.T) {
	validate, _ := setupValidation()
	repo := &repoMock{}
	svc := NewService(repo, validate)

	_, err := svc.Query(context.Background(), QueryFilter{StartDate: "last week"})
	assert.Error(t, err)

	recs, err := svc.Query(context.Background(), QueryFilter{StartDate: "2024-03-01", EndDate: "2024-03-10"})
	require.NoError(t, err)
	assert.NotNil(t, recs)
}
