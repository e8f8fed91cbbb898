package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/attendance"
)

const attendanceColumns = "id, enrollment_id, date, present, created_at"

type attendanceRow struct {
	ID           string    `db:"id"`
	EnrollmentID string    `db:"enrollment_id"`
	Date         time.Time `db:"date"`
	Present      bool      `db:"present"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r attendanceRow) record() attendance.Record {
	return attendance.Record{
		ID:           r.ID,
		EnrollmentID: r.EnrollmentID,
		Date:         r.Date.UTC(),
		Present:      r.Present,
		CreatedAt:    r.CreatedAt,
	}
}

type classAttendanceRow struct {
	attendanceRow
	UserID      string `db:"user_id"`
	StudentName string `db:"student_name"`
}

type attendanceRepository struct {
	repository
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{repository{db: db}}
}

func (repo attendanceRepository) UpsertAttendance(ctx context.Context, r attendance.Record, exec ...core.DBExecutor) (attendance.Record, error) {
	var row attendanceRow
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row,
		`INSERT INTO attendance (`+attendanceColumns+`) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (enrollment_id, date) DO UPDATE SET present = EXCLUDED.present
		RETURNING `+attendanceColumns,
		uuid.New().String(), r.EnrollmentID, r.Date.UTC(), r.Present, r.CreatedAt.UTC())
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "upserting attendance")
	}
	return row.record(), nil
}

func (repo attendanceRepository) ListClassAttendance(ctx context.Context, classID string, date *time.Time, exec ...core.DBExecutor) ([]attendance.ClassRecord, error) {
	w := new(where)
	w.add("e.class_id = ?", classID)
	if date != nil {
		w.add("a.date = ?", date.UTC())
	}

	var rows []classAttendanceRow
	err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows,
		`SELECT a.id, a.enrollment_id, a.date, a.present, a.created_at, e.user_id,
			COALESCE(s.full_name, pr.full_name, '') AS student_name
		FROM attendance a
			JOIN enrollments e ON e.id = a.enrollment_id
			LEFT JOIN students s ON s.id = e.student_id
			LEFT JOIN profiles pr ON pr.id = e.user_id`+w.String()+`
		ORDER BY a.date, student_name`, w.args...)
	if err != nil {
		return nil, errors.Wrap(err, "selecting class attendance")
	}

	records := make([]attendance.ClassRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, attendance.ClassRecord{Record: r.record(), UserID: r.UserID, StudentName: r.StudentName})
	}
	return records, nil
}

func (repo attendanceRepository) ListEnrollmentAttendance(ctx context.Context, enrollmentID string, exec ...core.DBExecutor) ([]attendance.Record, error) {
	var rows []attendanceRow
	err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows,
		"SELECT "+attendanceColumns+" FROM attendance WHERE enrollment_id = $1 ORDER BY date", enrollmentID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting attendance")
	}
	records := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}
	return records, nil
}
