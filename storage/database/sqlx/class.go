package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/class"
)

const classColumns = `id, professional_id, title, description, date, duration, capacity, max_students,
	location, category, level, activity, schedule, price, created_at, updated_at`

// classDetailQuery selects classes with their professional and active enrollment count.
// Filters and orderings apply on the "d" alias.
const classDetailQuery = `SELECT d.* FROM (
	SELECT c.id, c.professional_id, c.title, c.description, c.date, c.duration, c.capacity, c.max_students,
		c.location, c.category, c.level, c.activity, c.schedule, c.price, c.created_at, c.updated_at,
		p.full_name AS professional_name, p.user_id AS professional_user_id,
		(SELECT COUNT(*) FROM enrollments e WHERE e.class_id = c.id AND e.status <> 'cancelled') AS enrollment_count
	FROM classes c JOIN professionals p ON p.id = c.professional_id
) d`

type classRow struct {
	ID             string      `db:"id"`
	ProfessionalID string      `db:"professional_id"`
	Title          string      `db:"title"`
	Description    null.String `db:"description"`
	Date           time.Time   `db:"date"`
	Duration       int         `db:"duration"`
	Capacity       int         `db:"capacity"`
	MaxStudents    int         `db:"max_students"`
	Location       null.String `db:"location"`
	Category       null.String `db:"category"`
	Level          string      `db:"level"`
	Activity       null.String `db:"activity"`
	Schedule       null.String `db:"schedule"`
	Price          float64     `db:"price"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

func toClassRow(c class.Class) classRow {
	return classRow{
		ID:             c.ID,
		ProfessionalID: c.ProfessionalID,
		Title:          c.Title,
		Description:    null.NewString(c.Description, c.Description != ""),
		Date:           c.Date.UTC(),
		Duration:       c.Duration,
		Capacity:       c.Capacity,
		MaxStudents:    c.MaxStudents,
		Location:       null.NewString(c.Location, c.Location != ""),
		Category:       null.NewString(c.Category, c.Category != ""),
		Level:          c.Level,
		Activity:       null.NewString(c.Activity, c.Activity != ""),
		Schedule:       null.NewString(c.Schedule, c.Schedule != ""),
		Price:          c.Price,
		CreatedAt:      c.CreatedAt.UTC(),
		UpdatedAt:      c.UpdatedAt.UTC(),
	}
}

func (r classRow) class() class.Class {
	return class.Class{
		ID:             r.ID,
		ProfessionalID: r.ProfessionalID,
		Title:          r.Title,
		Description:    r.Description.String,
		Date:           r.Date,
		Duration:       r.Duration,
		Capacity:       r.Capacity,
		MaxStudents:    r.MaxStudents,
		Location:       r.Location.String,
		Category:       r.Category.String,
		Level:          r.Level,
		Activity:       r.Activity.String,
		Schedule:       r.Schedule.String,
		Price:          r.Price,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type classDetailRow struct {
	classRow
	ProfessionalName   string `db:"professional_name"`
	ProfessionalUserID string `db:"professional_user_id"`
	EnrollmentCount    int    `db:"enrollment_count"`
}

func (r classDetailRow) detail() class.Detail {
	d := class.Detail{
		Class:              r.class(),
		ProfessionalName:   r.ProfessionalName,
		ProfessionalUserID: r.ProfessionalUserID,
		EnrollmentCount:    r.EnrollmentCount,
	}
	d.ComputeSpots()
	return d
}

type classRepository struct {
	repository
}

var _ class.Repository = (*classRepository)(nil)

func NewClassRepository(db *sqlx.DB) *classRepository {
	return &classRepository{repository{db: db}}
}

func (repo classRepository) CreateClass(ctx context.Context, c class.Class, exec ...core.DBExecutor) (class.Class, error) {
	c.ID = uuid.New().String()
	_, err := sqlx.NamedExecContext(ctx, repo.getExec(exec),
		`INSERT INTO classes (`+classColumns+`) VALUES (:id, :professional_id, :title, :description, :date, :duration,
		:capacity, :max_students, :location, :category, :level, :activity, :schedule, :price, :created_at, :updated_at)`,
		toClassRow(c))
	if err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return c, nil
}

func (repo classRepository) GetClass(ctx context.Context, id string, exec ...core.DBExecutor) (class.Class, error) {
	return repo.getClass(ctx, id, "", repo.getExec(exec))
}

func (repo classRepository) LockClass(ctx context.Context, id string, exec core.DBExecutor) (class.Class, error) {
	return repo.getClass(ctx, id, " FOR UPDATE", repo.getExec([]core.DBExecutor{exec}))
}

func (repo classRepository) getClass(ctx context.Context, id, suffix string, q sqlx.QueryerContext) (class.Class, error) {
	if !isUUID(id) {
		return class.Class{}, class.ErrNotFound
	}
	var row classRow
	if err := sqlx.GetContext(ctx, q, &row, "SELECT "+classColumns+" FROM classes WHERE id = $1"+suffix, id); err != nil {
		return class.Class{}, trapNoRowsErr(err, class.ErrNotFound, "getting class")
	}
	return row.class(), nil
}

func (repo classRepository) GetClassDetail(ctx context.Context, id string, exec ...core.DBExecutor) (class.Detail, error) {
	if !isUUID(id) {
		return class.Detail{}, class.ErrNotFound
	}
	var row classDetailRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, classDetailQuery+" WHERE d.id = $1", id); err != nil {
		return class.Detail{}, trapNoRowsErr(err, class.ErrNotFound, "getting class")
	}
	return row.detail(), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern is an ILIKE pattern matching s literally anywhere in the column.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (repo classRepository) ListClasses(ctx context.Context, filter class.QueryFilter, exec ...core.DBExecutor) ([]class.Detail, error) {
	w := new(where)
	if filter.Location != "" {
		w.add("d.location ILIKE ?", containsPattern(filter.Location))
	}
	if filter.Category != "" {
		w.add("d.category = ?", filter.Category)
	}
	if filter.Level != "" {
		w.add("d.level = ?", filter.Level)
	}
	if filter.ProfessionalID != "" {
		if !isUUID(filter.ProfessionalID) {
			return []class.Detail{}, nil
		}
		w.add("d.professional_id = ?", filter.ProfessionalID)
	}
	if filter.Search != "" {
		val := containsPattern(filter.Search)
		w.add("(d.title ILIKE ? OR d.activity ILIKE ? OR d.description ILIKE ?)", val, val, val)
	}
	if filter.Available {
		w.add(`(CASE WHEN d.capacity > 0 THEN d.capacity ELSE d.max_students END = 0
			OR d.enrollment_count < CASE WHEN d.capacity > 0 THEN d.capacity ELSE d.max_students END)`)
	}

	var rows []classDetailRow
	query := classDetailQuery + w.String() + orderBy(filter.Ordering, "d.")
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, query, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting classes")
	}
	classes := make([]class.Detail, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.detail())
	}
	return classes, nil
}

func (repo classRepository) UpdateClass(ctx context.Context, c class.Class, exec ...core.DBExecutor) (class.Class, error) {
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec),
		`UPDATE classes SET title = :title, description = :description, date = :date, duration = :duration,
		capacity = :capacity, max_students = :max_students, location = :location, category = :category,
		level = :level, activity = :activity, schedule = :schedule, price = :price, updated_at = :updated_at
		WHERE id = :id`, toClassRow(c))
	if err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if err = checkAffected(res, class.ErrNotFound, "updating class"); err != nil {
		return class.Class{}, err
	}
	return c, nil
}

func (repo classRepository) DeleteClass(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if !isUUID(id) {
		return class.ErrNotFound
	}
	res, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM classes WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return checkAffected(res, class.ErrNotFound, "deleting class")
}
