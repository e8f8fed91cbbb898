package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/enrollment"
)

const enrollmentColumns = "id, user_id, class_id, student_id, status, created_at"

type enrollmentRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	ClassID   string      `db:"class_id"`
	StudentID null.String `db:"student_id"`
	Status    string      `db:"status"`
	CreatedAt time.Time   `db:"created_at"`
}

func toEnrollmentRow(e enrollment.Enrollment) enrollmentRow {
	return enrollmentRow{
		ID:        e.ID,
		UserID:    e.UserID,
		ClassID:   e.ClassID,
		StudentID: null.NewString(e.StudentID, e.StudentID != ""),
		Status:    e.Status,
		CreatedAt: e.CreatedAt.UTC(),
	}
}

func (r enrollmentRow) enrollment() enrollment.Enrollment {
	return enrollment.Enrollment{
		ID:        r.ID,
		UserID:    r.UserID,
		ClassID:   r.ClassID,
		StudentID: r.StudentID.String,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}

type enrollmentItemRow struct {
	enrollmentRow
	ClassTitle       string      `db:"class_title"`
	ClassDate        time.Time   `db:"class_date"`
	ClassSchedule    null.String `db:"class_schedule"`
	ClassLocation    null.String `db:"class_location"`
	ClassCategory    null.String `db:"class_category"`
	ClassLevel       string      `db:"class_level"`
	ProfessionalName string      `db:"professional_name"`
}

type enrollmentMemberRow struct {
	enrollmentRow
	StudentName      string `db:"student_name"`
	StudentAvatarURL string `db:"student_avatar_url"`
}

type enrollmentRepository struct {
	repository
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *sqlx.DB) *enrollmentRepository {
	return &enrollmentRepository{repository{db: db}}
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, e enrollment.Enrollment, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	e.ID = uuid.New().String()
	_, err := sqlx.NamedExecContext(ctx, repo.getExec(exec),
		`INSERT INTO enrollments (`+enrollmentColumns+`) VALUES (:id, :user_id, :class_id, :student_id, :status, :created_at)`,
		toEnrollmentRow(e))
	if err != nil {
		if isUniqueViolation(err) {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return e, nil
}

func (repo enrollmentRepository) GetEnrollment(ctx context.Context, id string, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	if !isUUID(id) {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	var row enrollmentRow
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row, "SELECT "+enrollmentColumns+" FROM enrollments WHERE id = $1", id)
	if err != nil {
		return enrollment.Enrollment{}, trapNoRowsErr(err, enrollment.ErrNotFound, "getting enrollment")
	}
	return row.enrollment(), nil
}

func (repo enrollmentRepository) FindEnrollment(ctx context.Context, userID, classID string, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	if !isUUID(userID) || !isUUID(classID) {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	var row enrollmentRow
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row,
		"SELECT "+enrollmentColumns+" FROM enrollments WHERE user_id = $1 AND class_id = $2", userID, classID)
	if err != nil {
		return enrollment.Enrollment{}, trapNoRowsErr(err, enrollment.ErrNotFound, "finding enrollment")
	}
	return row.enrollment(), nil
}

func (repo enrollmentRepository) CountActiveEnrollments(ctx context.Context, classID string, exec ...core.DBExecutor) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, repo.getExec(exec), &count,
		"SELECT COUNT(*) FROM enrollments WHERE class_id = $1 AND status <> $2", classID, enrollment.StatusCancelled)
	if err != nil {
		return 0, errors.Wrap(err, "counting enrollments")
	}
	return count, nil
}

func (repo enrollmentRepository) ListUserEnrollments(ctx context.Context, userID string, exec ...core.DBExecutor) ([]enrollment.Item, error) {
	var rows []enrollmentItemRow
	err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows,
		`SELECT e.id, e.user_id, e.class_id, e.student_id, e.status, e.created_at,
			c.title AS class_title, c.date AS class_date, c.schedule AS class_schedule, c.location AS class_location,
			c.category AS class_category, c.level AS class_level, p.full_name AS professional_name
		FROM enrollments e
			JOIN classes c ON c.id = e.class_id
			JOIN professionals p ON p.id = c.professional_id
		WHERE e.user_id = $1
		ORDER BY e.created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting enrollments")
	}

	items := make([]enrollment.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, enrollment.Item{
			Enrollment: r.enrollment(),
			Class: enrollment.ClassSummary{
				ID:       r.ClassID,
				Title:    r.ClassTitle,
				Date:     r.ClassDate,
				Schedule: r.ClassSchedule.String,
				Location: r.ClassLocation.String,
				Category: r.ClassCategory.String,
				Level:    r.ClassLevel,
			},
			ProfessionalName: r.ProfessionalName,
		})
	}
	return items, nil
}

func (repo enrollmentRepository) ListClassMembers(ctx context.Context, classID string, exec ...core.DBExecutor) ([]enrollment.Member, error) {
	var rows []enrollmentMemberRow
	err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows,
		`SELECT e.id, e.user_id, e.class_id, e.student_id, e.status, e.created_at,
			COALESCE(s.full_name, pr.full_name, '') AS student_name,
			COALESCE(NULLIF(s.avatar_url, ''), pr.avatar_url, '') AS student_avatar_url
		FROM enrollments e
			LEFT JOIN students s ON s.id = e.student_id
			LEFT JOIN profiles pr ON pr.id = e.user_id
		WHERE e.class_id = $1
		ORDER BY e.created_at`, classID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting class enrollments")
	}

	members := make([]enrollment.Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, enrollment.Member{
			Enrollment:       r.enrollment(),
			StudentName:      r.StudentName,
			StudentAvatarURL: r.StudentAvatarURL,
		})
	}
	return members, nil
}

func (repo enrollmentRepository) UpdateEnrollment(ctx context.Context, e enrollment.Enrollment, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec),
		`UPDATE enrollments SET status = :status, student_id = :student_id WHERE id = :id`, toEnrollmentRow(e))
	if err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "updating enrollment")
	}
	if err = checkAffected(res, enrollment.ErrNotFound, "updating enrollment"); err != nil {
		return enrollment.Enrollment{}, err
	}
	return e, nil
}

func (repo enrollmentRepository) DeleteEnrollment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if !isUUID(id) {
		return enrollment.ErrNotFound
	}
	res, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM enrollments WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return checkAffected(res, enrollment.ErrNotFound, "deleting enrollment")
}
