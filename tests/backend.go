package testutil

import (
	"bytes"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/analytics"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/subject"
)

// backendTimestamp is how the hosted backend serialises created_at (no zone).
const backendTimestamp = "2006-01-02T15:04:05.999999"

type (
	// Call is one request received by the fake backend.
	Call struct {
		Method    string
		Path      string // as requested, e.g. /subjects/3
		Route     string // as routed, e.g. /subjects/:id
		Query     string
		Body      string
		RequestID string
	}

	// Backend is an in-memory implementation of the attendance API.
	Backend struct {
		Server *httptest.Server

		mu        sync.Mutex
		subjects  []subject.Subject
		records   []attendance.Record
		subjectPK int
		recordPK  int
		calls     []Call
		failures  map[string]int // "METHOD route" -> status
		now       func() time.Time
	}

	subjectOut struct {
		ID        int    `json:"id"`
		Name      string `json:"name"`
		CreatedAt string `json:"created_at"`
	}

	detail struct {
		Detail string `json:"detail"`
	}
)

// NewBackend starts a fake backend, closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	b := &Backend{
		failures: make(map[string]int),
		now:      time.Now,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(b.record)

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Attendance Tracker API", "status": "running"})
	})
	e.GET("/subjects", b.listSubjects)
	e.POST("/subjects", b.createSubject)
	e.GET("/subjects/:id", b.getSubject)
	e.DELETE("/subjects/:id", b.deleteSubject)
	e.GET("/attendance", b.listAttendance)
	e.POST("/attendance", b.recordAttendance)
	e.GET("/analytics", b.analytics)

	b.Server = httptest.NewServer(e)
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) URL() string { return b.Server.URL }

func (b *Backend) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		var body []byte
		if req.Body != nil {
			body, _ = io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		b.mu.Lock()
		b.calls = append(b.calls, Call{
			Method:    req.Method,
			Path:      req.URL.Path,
			Route:     c.Path(),
			Query:     req.URL.RawQuery,
			Body:      string(body),
			RequestID: req.Header.Get("X-Request-ID"),
		})
		status, fail := b.failures[req.Method+" "+c.Path()]
		b.mu.Unlock()

		if fail {
			return c.JSON(status, detail{Detail: http.StatusText(status)})
		}
		return next(c)
	}
}

// FailWith makes every request to (method, route) answer status. route is the
// routed pattern, e.g. "/subjects/:id".
func (b *Backend) FailWith(method, route string, status int) {
	b.mu.Lock()
	b.failures[method+" "+route] = status
	b.mu.Unlock()
}

// Heal clears every FailWith.
func (b *Backend) Heal() {
	b.mu.Lock()
	b.failures = make(map[string]int)
	b.mu.Unlock()
}

func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallsTo returns the calls made to (method, route).
func (b *Backend) CallsTo(method, route string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Method == method && c.Route == route {
			out = append(out, c)
		}
	}
	return out
}

func (b *Backend) ResetCalls() {
	b.mu.Lock()
	b.calls = nil
	b.mu.Unlock()
}

// SeedSubjects adds subjects without recording calls.
func (b *Backend) SeedSubjects(names ...string) []subject.Subject {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]subject.Subject, 0, len(names))
	for _, name := range names {
		out = append(out, b.addSubject(name))
	}
	return out
}

// SeedRecord stores r as if it had been posted.
func (b *Backend) SeedRecord(r attendance.Record) attendance.Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.upsert(attendance.NewRecord{
		SubjectID:        r.SubjectID,
		Date:             r.Date,
		TotalLectures:    r.TotalLectures,
		AttendedLectures: r.AttendedLectures,
	})
}

func (b *Backend) Subjects() []subject.Subject {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]subject.Subject(nil), b.subjects...)
}

func (b *Backend) Records() []attendance.Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]attendance.Record(nil), b.records...)
}

func (b *Backend) addSubject(name string) subject.Subject {
	b.subjectPK++
	sub := subject.Subject{
		ID:        b.subjectPK,
		Name:      name,
		CreatedAt: core.Timestamp{Time: b.now().UTC().Truncate(time.Microsecond)},
	}
	b.subjects = append(b.subjects, sub)
	return sub
}

func (b *Backend) findSubject(id int) (subject.Subject, int, bool) {
	for i, s := range b.subjects {
		if s.ID == id {
			return s, i, true
		}
	}
	return subject.Subject{}, -1, false
}

func (b *Backend) upsert(nr attendance.NewRecord) attendance.Record {
	sub, _, _ := b.findSubject(nr.SubjectID)
	rec := attendance.Record{
		SubjectID:        nr.SubjectID,
		SubjectName:      sub.Name,
		Date:             nr.Date,
		TotalLectures:    nr.TotalLectures,
		AttendedLectures: nr.AttendedLectures,
		AbsentLectures:   nr.TotalLectures - nr.AttendedLectures,
	}
	for i, r := range b.records {
		if r.SubjectID == nr.SubjectID && r.Date == nr.Date {
			rec.ID = r.ID
			b.records[i] = rec
			return rec
		}
	}
	b.recordPK++
	rec.ID = b.recordPK
	b.records = append(b.records, rec)
	return rec
}

func toSubjectOut(s subject.Subject) subjectOut {
	return subjectOut{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt.Format(backendTimestamp)}
}

func pathID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil
}

func (b *Backend) listSubjects(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]subjectOut, 0, len(b.subjects))
	for _, s := range b.subjects {
		out = append(out, toSubjectOut(s))
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) createSubject(c echo.Context) error {
	var ns subject.NewSubject
	if err := c.Bind(&ns); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, detail{Detail: err.Error()})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, toSubjectOut(b.addSubject(ns.Name)))
}

func (b *Backend) getSubject(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, detail{Detail: "invalid id"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, _, found := b.findSubject(id)
	if !found {
		return c.JSON(http.StatusNotFound, detail{Detail: "Subject not found"})
	}
	return c.JSON(http.StatusOK, toSubjectOut(sub))
}

func (b *Backend) deleteSubject(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, detail{Detail: "invalid id"})
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, idx, found := b.findSubject(id)
	if !found {
		return c.JSON(http.StatusNotFound, detail{Detail: "Subject not found"})
	}
	b.subjects = append(b.subjects[:idx], b.subjects[idx+1:]...)
	kept := b.records[:0]
	for _, r := range b.records {
		if r.SubjectID != id {
			kept = append(kept, r)
		}
	}
	b.records = kept
	return c.JSON(http.StatusOK, map[string]string{"message": "Subject deleted successfully"})
}

func (b *Backend) recordAttendance(c echo.Context) error {
	var nr attendance.NewRecord
	if err := c.Bind(&nr); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, detail{Detail: err.Error()})
	}
	if _, err := time.Parse(core.DateLayout, nr.Date); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, detail{Detail: "invalid date"})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, _, found := b.findSubject(nr.SubjectID); !found {
		return c.JSON(http.StatusNotFound, detail{Detail: "Subject not found"})
	}
	if nr.AttendedLectures > nr.TotalLectures {
		return c.JSON(http.StatusBadRequest, detail{Detail: "Attended lectures cannot exceed total lectures"})
	}
	if nr.TotalLectures < 0 || nr.AttendedLectures < 0 {
		return c.JSON(http.StatusBadRequest, detail{Detail: "Lecture counts cannot be negative"})
	}
	return c.JSON(http.StatusOK, b.upsert(nr))
}

func (b *Backend) listAttendance(c echo.Context) error {
	subjectID, _ := strconv.Atoi(c.QueryParam("subject_id"))
	start, end := c.QueryParam("start_date"), c.QueryParam("end_date")

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]attendance.Record, 0, len(b.records))
	for _, r := range b.records {
		if subjectID > 0 && r.SubjectID != subjectID {
			continue
		}
		if start != "" && r.Date < start {
			continue
		}
		if end != "" && r.Date > end {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return c.JSON(http.StatusOK, out)
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func percentage(attended, conducted int) float64 {
	if conducted == 0 {
		return 0
	}
	return round2(float64(attended) / float64(conducted) * 100)
}

func (b *Backend) analytics(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	o := analytics.Overall{
		TotalSubjects: len(b.subjects),
		SubjectStats:  make([]analytics.SubjectStats, 0, len(b.subjects)),
	}
	for _, s := range b.subjects {
		st := analytics.SubjectStats{SubjectID: s.ID, SubjectName: s.Name}
		for _, r := range b.records {
			if r.SubjectID != s.ID {
				continue
			}
			st.TotalConducted += r.TotalLectures
			st.TotalAttended += r.AttendedLectures
			st.TotalAbsent += r.AbsentLectures
		}
		st.AttendancePercentage = percentage(st.TotalAttended, st.TotalConducted)
		o.SubjectStats = append(o.SubjectStats, st)
		o.TotalConducted += st.TotalConducted
		o.TotalAttended += st.TotalAttended
		o.TotalAbsent += st.TotalAbsent
	}
	o.OverallPercentage = percentage(o.TotalAttended, o.TotalConducted)
	return c.JSON(http.StatusOK, o)
}
