package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/profile"
)

const profileColumns = "id, full_name, phone, avatar_url, created_at, updated_at"

type profileRow struct {
	ID        string    `db:"id"`
	FullName  string    `db:"full_name"`
	Phone     string    `db:"phone"`
	AvatarURL string    `db:"avatar_url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r profileRow) profile() profile.Profile {
	return profile.Profile(r)
}

type profileRepository struct {
	repository
}

var _ profile.Repository = (*profileRepository)(nil)

func NewProfileRepository(db *sqlx.DB) *profileRepository {
	return &profileRepository{repository{db: db}}
}

func (repo profileRepository) CreateProfile(ctx context.Context, p profile.Profile, exec ...core.DBExecutor) (profile.Profile, error) {
	row := profileRow(p)
	_, err := sqlx.NamedExecContext(ctx, repo.getExec(exec),
		`INSERT INTO profiles (`+profileColumns+`) VALUES (:id, :full_name, :phone, :avatar_url, :created_at, :updated_at)`, row)
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "inserting profile")
	}
	return p, nil
}

func (repo profileRepository) GetProfile(ctx context.Context, id string, exec ...core.DBExecutor) (profile.Profile, error) {
	if !isUUID(id) {
		return profile.Profile{}, profile.ErrNotFound
	}
	var row profileRow
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row, "SELECT "+profileColumns+" FROM profiles WHERE id = $1", id)
	if err != nil {
		return profile.Profile{}, trapNoRowsErr(err, profile.ErrNotFound, "getting profile")
	}
	return row.profile(), nil
}

func (repo profileRepository) UpdateProfile(ctx context.Context, p profile.Profile, exec ...core.DBExecutor) (profile.Profile, error) {
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec),
		`UPDATE profiles SET full_name = :full_name, phone = :phone, avatar_url = :avatar_url, updated_at = :updated_at
		WHERE id = :id`, profileRow(p))
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "updating profile")
	}
	if err = checkAffected(res, profile.ErrNotFound, "updating profile"); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}
