// Package reportsvc renders spreadsheets.
package reportsvc

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/fitsenior/backend/core/attendance"
)

const (
	SheetName  = "Attendance"
	headerDate = "02/01/2006"

	// Present / absent ("falta") marks.
	markPresent = "P"
	markAbsent  = "F"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// WriteAttendance writes sheet as an xlsx workbook: a header row, then one row per student with
// one column per roll call date and a final frequency column. Cells are left empty when the
// student was not part of that roll call.
func WriteAttendance(w io.Writer, sheet attendance.Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	header := make([]interface{}, 0, len(sheet.Dates)+2)
	header = append(header, "Student")
	for _, d := range sheet.Dates {
		header = append(header, d.Format(headerDate))
	}
	header = append(header, "Frequency (%)")
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for i, row := range sheet.Rows {
		values := make([]interface{}, 0, len(header))
		values = append(values, row.StudentName)
		for _, d := range sheet.Dates {
			present, ok := row.Marks[d.Format(attendance.DateLayout)]
			switch {
			case !ok:
				values = append(values, nil)
			case present:
				values = append(values, markPresent)
			default:
				values = append(values, markAbsent)
			}
		}
		values = append(values, row.Frequency.Rate)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 32); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}
