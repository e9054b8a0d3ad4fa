package remote

import (
	"context"
	"strconv"

	"github.com/sendgrid/rest"

	"github.com/trezcool/mahudhurio/core/attendance"
)

type attendanceRepository struct {
	c *Client
}

func NewAttendanceRepository(c *Client) attendance.Repository {
	return &attendanceRepository{c: c}
}

func (repo *attendanceRepository) RecordAttendance(ctx context.Context, nr attendance.NewRecord) (attendance.Record, error) {
	var rec attendance.Record
	err := repo.c.do(ctx, call{op: "recording attendance", method: rest.Post, path: "/attendance", in: nr, out: &rec})
	return rec, err
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	query := make(map[string]string, 3)
	if filter.SubjectID > 0 {
		query["subject_id"] = strconv.Itoa(filter.SubjectID)
	}
	if filter.StartDate != "" {
		query["start_date"] = filter.StartDate
	}
	if filter.EndDate != "" {
		query["end_date"] = filter.EndDate
	}

	var recs []attendance.Record
	err := repo.c.do(ctx, call{op: "listing attendance", method: rest.Get, path: "/attendance", query: query, out: &recs})
	return recs, err
}
