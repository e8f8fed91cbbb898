package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/student"
)

const studentColumns = `id, user_id, full_name, gender, phone, email, cpf, address, birth_date,
	health_certificate_url, avatar_url, created_at, updated_at`

type studentRow struct {
	ID                   string      `db:"id"`
	UserID               string      `db:"user_id"`
	FullName             string      `db:"full_name"`
	Gender               string      `db:"gender"`
	Phone                string      `db:"phone"`
	Email                string      `db:"email"`
	CPF                  string      `db:"cpf"`
	Address              string      `db:"address"`
	BirthDate            time.Time   `db:"birth_date"`
	HealthCertificateURL null.String `db:"health_certificate_url"`
	AvatarURL            null.String `db:"avatar_url"`
	CreatedAt            time.Time   `db:"created_at"`
	UpdatedAt            time.Time   `db:"updated_at"`
}

func toStudentRow(s student.Student) studentRow {
	return studentRow{
		ID:                   s.ID,
		UserID:               s.UserID,
		FullName:             s.FullName,
		Gender:               s.Gender,
		Phone:                s.Phone,
		Email:                s.Email,
		CPF:                  s.CPF,
		Address:              s.Address,
		BirthDate:            s.BirthDate,
		HealthCertificateURL: null.NewString(s.HealthCertificateURL, s.HealthCertificateURL != ""),
		AvatarURL:            null.NewString(s.AvatarURL, s.AvatarURL != ""),
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

func (r studentRow) student() student.Student {
	return student.Student{
		ID:                   r.ID,
		UserID:               r.UserID,
		FullName:             r.FullName,
		Gender:               r.Gender,
		Phone:                r.Phone,
		Email:                r.Email,
		CPF:                  r.CPF,
		Address:              r.Address,
		BirthDate:            r.BirthDate,
		HealthCertificateURL: r.HealthCertificateURL.String,
		AvatarURL:            r.AvatarURL.String,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

type studentRepository struct {
	repository
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{repository{db: db}}
}

func (repo studentRepository) CreateStudent(ctx context.Context, s student.Student, exec ...core.DBExecutor) (student.Student, error) {
	s.ID = uuid.New().String()
	_, err := sqlx.NamedExecContext(ctx, repo.getExec(exec),
		`INSERT INTO students (`+studentColumns+`) VALUES (:id, :user_id, :full_name, :gender, :phone, :email, :cpf,
		:address, :birth_date, :health_certificate_url, :avatar_url, :created_at, :updated_at)`, toStudentRow(s))
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo studentRepository) GetStudentByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (student.Student, error) {
	if !isUUID(userID) {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row, "SELECT "+studentColumns+" FROM students WHERE user_id = $1", userID)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student")
	}
	return row.student(), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, s student.Student, exec ...core.DBExecutor) (student.Student, error) {
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec),
		`UPDATE students SET full_name = :full_name, gender = :gender, phone = :phone, email = :email,
		address = :address, birth_date = :birth_date, health_certificate_url = :health_certificate_url,
		avatar_url = :avatar_url, updated_at = :updated_at WHERE id = :id`, toStudentRow(s))
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if err = checkAffected(res, student.ErrNotFound, "updating student"); err != nil {
		return student.Student{}, err
	}
	return s, nil
}
