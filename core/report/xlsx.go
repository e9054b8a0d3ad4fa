package report

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/analytics"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sheetName       = "Analytics"
)

var header = []interface{}{"Subject", "Lectures", "Attended", "Missed", "Attendance", "Status"}

// Filename names the spreadsheet after the day it was generated.
func Filename(now time.Time) string {
	return "attendance-" + core.FormatDate(now) + ".xlsx"
}

// WriteXLSX writes one row per subject, in backend order, followed by the overall totals.
func WriteXLSX(w io.Writer, o analytics.Overall, now time.Time) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Attendance analytics",
		Created: now.UTC().Format(time.RFC3339),
	}); err != nil {
		return errors.Wrap(err, "setting document properties")
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating style")
	}
	pct, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(`0.0"%"`)})
	if err != nil {
		return errors.Wrap(err, "creating style")
	}

	row := 1
	if err := setRow(f, row, header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "F1", bold); err != nil {
		return errors.Wrap(err, "styling header")
	}

	for _, st := range o.SubjectStats {
		row++
		values := []interface{}{st.SubjectName, st.TotalConducted, st.TotalAttended, st.TotalAbsent, st.AttendancePercentage, st.Tier().String()}
		if err := setRow(f, row, values); err != nil {
			return err
		}
	}

	row++
	total := []interface{}{"Overall", o.TotalConducted, o.TotalAttended, o.TotalAbsent, o.OverallPercentage, o.Tier().String()}
	if err := setRow(f, row, total); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(total), row)
	if err := f.SetCellStyle(sheetName, first, last, bold); err != nil {
		return errors.Wrap(err, "styling totals")
	}
	bottom, _ := excelize.CoordinatesToCellName(5, row)
	if err := f.SetCellStyle(sheetName, "E2", bottom, pct); err != nil {
		return errors.Wrap(err, "styling percentages")
	}
	if err := f.SetColWidth(sheetName, "A", "A", 28); err != nil {
		return errors.Wrap(err, "sizing columns")
	}

	return errors.Wrap(f.Write(w), "writing spreadsheet")
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrap(err, "locating row")
	}
	return errors.Wrapf(f.SetSheetRow(sheetName, cell, &values), "writing row %d", row)
}

func strPtr(s string) *string { return &s }
