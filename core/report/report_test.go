package report

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/analytics"
	"github.com/trezcool/mahudhurio/core/attendance"
	appfs "github.com/trezcool/mahudhurio/fs"
	"github.com/trezcool/mahudhurio/services/email"
	"github.com/trezcool/mahudhurio/storage/remote"
	"github.com/trezcool/mahudhurio/tests"
)

var sample = analytics.Overall{
	TotalSubjects:     2,
	TotalConducted:    10,
	TotalAttended:     7,
	TotalAbsent:       3,
	OverallPercentage: 70,
	SubjectStats: []analytics.SubjectStats{
		{SubjectID: 2, SubjectName: "Physics", TotalConducted: 4, TotalAttended: 4, AttendancePercentage: 100},
		{SubjectID: 1, SubjectName: "Maths", TotalConducted: 6, TotalAttended: 3, TotalAbsent: 3, AttendancePercentage: 50},
	},
}

func fixNow(t *testing.T, now time.Time) {
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = time.Now })
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sample, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4, "header, one row per subject, totals")
	assert.Equal(t, []string{"Subject", "Lectures", "Attended", "Missed", "Attendance", "Status"}, rows[0])
	assert.Equal(t, "Physics", rows[1][0], "backend order is kept")
	assert.Equal(t, "good", rows[1][5])
	assert.Equal(t, "Maths", rows[2][0])
	assert.Equal(t, "critical", rows[2][5])
	assert.Equal(t, "Overall", rows[3][0])
	assert.Equal(t, "10", rows[3][1])
	assert.Equal(t, "warning", rows[3][5])
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, analytics.Overall{}, time.Now()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "attendance-2024-03-10.xlsx", Filename(time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)))
}

func setupReporter(t *testing.T) (*testutil.Backend, *Reporter, *testutil.Logger) {
	backend := testutil.NewBackend(t)
	conf := testutil.NewConfig(backend.URL())
	logger := new(testutil.Logger)
	core.ParseEmailTemplates(appfs.FS, "templates/email", true, logger)
	require.Empty(t, logger.Entries("error"))

	client := remote.NewClient(conf.Backend)
	svc := analytics.NewService(remote.NewAnalyticsRepository(client))
	return backend, NewReporter(svc, emailsvc.NewConsoleServiceMock(conf, logger), conf), logger
}

func TestReporter_SendReport(t *testing.T) {
	fixNow(t, time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC))
	emailsvc.ClearSentMessages()
	backend, reporter, _ := setupReporter(t)
	subs := backend.SeedSubjects("Maths")
	backend.SeedRecord(attendance.Record{SubjectID: subs[0].ID, Date: "2024-03-10", TotalLectures: 4, AttendedLectures: 3})

	require.True(t, reporter.Enabled())
	require.NoError(t, reporter.SendReport(context.Background()))

	msg, ok := emailsvc.LastSentMessage()
	require.True(t, ok)
	assert.Equal(t, "Attendance report for Mar 10, 2024", msg.Subject)
	assert.Equal(t, "student@test.test", msg.To[0].Address)
	assert.Contains(t, msg.TextContent, "Overall: 75.0% (3 of 4 lectures, 1 missed)")
	assert.Contains(t, msg.TextContent, "- Maths: 75.0%")
	assert.Contains(t, msg.TextContent, "Great job!")
	assert.Contains(t, msg.HTMLContent, "tier-good")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "attendance-2024-03-10.xlsx", msg.Attachments[0].Filename)
	assert.Equal(t, XLSXContentType, msg.Attachments[0].ContentType)
}

func TestReporter_SendReport_Failures(t *testing.T) {
	emailsvc.ClearSentMessages()
	backend, reporter, _ := setupReporter(t)
	backend.FailWith(http.MethodGet, "/analytics", http.StatusServiceUnavailable)

	err := reporter.SendReport(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsRemote(err))
	_, sent := emailsvc.LastSentMessage()
	assert.False(t, sent)

	reporter.enabled = false
	assert.Equal(t, ErrNoRecipient, reporter.SendReport(context.Background()))
}

func TestScheduler(t *testing.T) {
	_, reporter, logger := setupReporter(t)

	_, err := NewScheduler(reporter, "not a cron spec", logger)
	assert.Error(t, err)

	s, err := NewScheduler(reporter, "0 18 * * 0", logger)
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	next := s.NextRun()
	assert.Equal(t, time.Sunday, next.Weekday())
	assert.Equal(t, 18, next.Hour())
}

func TestScheduler_sendDigest(t *testing.T) {
	emailsvc.ClearSentMessages()
	backend, reporter, logger := setupReporter(t)
	backend.SeedSubjects("Maths")

	s, err := NewScheduler(reporter, "0 18 * * 0", logger)
	require.NoError(t, err)
	s.sendDigest()

	_, sent := emailsvc.LastSentMessage()
	assert.True(t, sent)
	assert.True(t, logger.Logged("info", "digest sent to student@test.test"))

	backend.FailWith(http.MethodGet, "/analytics", http.StatusInternalServerError)
	s.sendDigest()
	assert.True(t, logger.Logged("error", "sending digest"))
}
