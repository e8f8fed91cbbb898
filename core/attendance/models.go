package attendance

import (
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
)

type Record struct {
	ID           string    `json:"id"`
	EnrollmentID string    `json:"enrollment_id"`
	Date         time.Time `json:"date"`
	Present      bool      `json:"present"`
	CreatedAt    time.Time `json:"created_at"`
}

// ClassRecord is a Record with the student it is about.
type ClassRecord struct {
	Record
	UserID      string `json:"user_id"`
	StudentName string `json:"student_name"`
}

type Mark struct {
	EnrollmentID string `json:"enrollment_id" validate:"required"`
	Present      bool   `json:"present"`
}

// RollCall is the attendance of a class on a given day.
type RollCall struct {
	Date    time.Time `json:"date" validate:"required"`
	Records []Mark    `json:"records" validate:"required,min=1,dive"`
}

func (rc *RollCall) Validate(validate *validator.Validate) error {
	return validate.Struct(rc)
}

type Frequency struct {
	Total   int      `json:"total"`
	Present int      `json:"present"`
	Absent  int      `json:"absent"`
	Rate    float64  `json:"rate"` // percent, 2 decimals
	Records []Record `json:"records"`
}

// NewFrequency computes the attendance rate over records.
func NewFrequency(records []Record) Frequency {
	f := Frequency{Total: len(records), Records: records}
	for _, r := range records {
		if r.Present {
			f.Present++
		}
	}
	f.Absent = f.Total - f.Present
	if f.Total > 0 {
		f.Rate = math.Round(float64(f.Present)/float64(f.Total)*10000) / 100
	}
	if f.Records == nil {
		f.Records = []Record{}
	}
	return f
}

// Sheet is the attendance of a class laid out as a grid, one row per student and one column per date.
type Sheet struct {
	ClassTitle string
	Dates      []time.Time
	Rows       []SheetRow
}

type SheetRow struct {
	StudentName string
	// Marks is keyed by date in the YYYY-MM-DD format; a missing key means no roll call for that student.
	Marks     map[string]bool
	Frequency Frequency
}

const DateLayout = "2006-01-02"

// NewSheet builds a Sheet from class records. Rows follow the order of members.
func NewSheet(title string, members []SheetMember, records []ClassRecord) Sheet {
	byEnrollment := map[string][]Record{}
	dates := map[string]time.Time{}
	for _, r := range records {
		byEnrollment[r.EnrollmentID] = append(byEnrollment[r.EnrollmentID], r.Record)
		dates[r.Date.Format(DateLayout)] = r.Date
	}

	sheet := Sheet{ClassTitle: title}
	for _, d := range dates {
		sheet.Dates = append(sheet.Dates, d)
	}
	sort.Slice(sheet.Dates, func(i, j int) bool { return sheet.Dates[i].Before(sheet.Dates[j]) })

	for _, m := range members {
		row := SheetRow{StudentName: m.StudentName, Marks: map[string]bool{}}
		for _, r := range byEnrollment[m.EnrollmentID] {
			row.Marks[r.Date.Format(DateLayout)] = r.Present
		}
		row.Frequency = NewFrequency(byEnrollment[m.EnrollmentID])
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

type SheetMember struct {
	EnrollmentID string
	StudentName  string
}
