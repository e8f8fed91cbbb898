package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/professional"
)

const professionalColumns = `id, user_id, full_name, email, phone, cpf, cref, address, birth_date, gender,
	specialty, bio, avatar_url, created_at, updated_at`

type professionalRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	FullName  string      `db:"full_name"`
	Email     string      `db:"email"`
	Phone     string      `db:"phone"`
	CPF       string      `db:"cpf"`
	CREF      string      `db:"cref"`
	Address   string      `db:"address"`
	BirthDate time.Time   `db:"birth_date"`
	Gender    string      `db:"gender"`
	Specialty null.String `db:"specialty"`
	Bio       null.String `db:"bio"`
	AvatarURL null.String `db:"avatar_url"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func toProfessionalRow(p professional.Professional) professionalRow {
	return professionalRow{
		ID:        p.ID,
		UserID:    p.UserID,
		FullName:  p.FullName,
		Email:     p.Email,
		Phone:     p.Phone,
		CPF:       p.CPF,
		CREF:      p.CREF,
		Address:   p.Address,
		BirthDate: p.BirthDate,
		Gender:    p.Gender,
		Specialty: null.NewString(p.Specialty, p.Specialty != ""),
		Bio:       null.NewString(p.Bio, p.Bio != ""),
		AvatarURL: null.NewString(p.AvatarURL, p.AvatarURL != ""),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (r professionalRow) professional() professional.Professional {
	return professional.Professional{
		ID:        r.ID,
		UserID:    r.UserID,
		FullName:  r.FullName,
		Email:     r.Email,
		Phone:     r.Phone,
		CPF:       r.CPF,
		CREF:      r.CREF,
		Address:   r.Address,
		BirthDate: r.BirthDate,
		Gender:    r.Gender,
		Specialty: r.Specialty.String,
		Bio:       r.Bio.String,
		AvatarURL: r.AvatarURL.String,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type professionalRepository struct {
	repository
}

var _ professional.Repository = (*professionalRepository)(nil)

func NewProfessionalRepository(db *sqlx.DB) *professionalRepository {
	return &professionalRepository{repository{db: db}}
}

func (repo professionalRepository) CreateProfessional(ctx context.Context, p professional.Professional, exec ...core.DBExecutor) (professional.Professional, error) {
	p.ID = uuid.New().String()
	_, err := sqlx.NamedExecContext(ctx, repo.getExec(exec),
		`INSERT INTO professionals (`+professionalColumns+`) VALUES (:id, :user_id, :full_name, :email, :phone, :cpf,
		:cref, :address, :birth_date, :gender, :specialty, :bio, :avatar_url, :created_at, :updated_at)`, toProfessionalRow(p))
	if err != nil {
		if isUniqueViolation(err) {
			return professional.Professional{}, professional.ErrExists
		}
		return professional.Professional{}, errors.Wrap(err, "inserting professional")
	}
	return p, nil
}

func (repo professionalRepository) get(ctx context.Context, column, value string, exec []core.DBExecutor) (professional.Professional, error) {
	if !isUUID(value) {
		return professional.Professional{}, professional.ErrNotFound
	}
	var row professionalRow
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row,
		"SELECT "+professionalColumns+" FROM professionals WHERE "+column+" = $1", value)
	if err != nil {
		return professional.Professional{}, trapNoRowsErr(err, professional.ErrNotFound, "getting professional")
	}
	return row.professional(), nil
}

func (repo professionalRepository) GetProfessional(ctx context.Context, id string, exec ...core.DBExecutor) (professional.Professional, error) {
	return repo.get(ctx, "id", id, exec)
}

func (repo professionalRepository) GetProfessionalByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (professional.Professional, error) {
	return repo.get(ctx, "user_id", userID, exec)
}

func (repo professionalRepository) UpdateProfessional(ctx context.Context, p professional.Professional, exec ...core.DBExecutor) (professional.Professional, error) {
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec),
		`UPDATE professionals SET full_name = :full_name, email = :email, phone = :phone, address = :address,
		birth_date = :birth_date, gender = :gender, specialty = :specialty, bio = :bio, avatar_url = :avatar_url,
		updated_at = :updated_at WHERE id = :id`, toProfessionalRow(p))
	if err != nil {
		return professional.Professional{}, errors.Wrap(err, "updating professional")
	}
	if err = checkAffected(res, professional.ErrNotFound, "updating professional"); err != nil {
		return professional.Professional{}, err
	}
	return p, nil
}
