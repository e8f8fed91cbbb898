package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/demand"
)

const demandSelect = `SELECT d.id, d.user_id, COALESCE(p.full_name, '') AS author_name, d.activity, d.neighborhood,
	d.schedule, d.location, d.num_interested, d.created_at, d.updated_at
	FROM demands d LEFT JOIN profiles p ON p.id = d.user_id`

type demandRow struct {
	ID            string      `db:"id"`
	UserID        string      `db:"user_id"`
	AuthorName    string      `db:"author_name"`
	Activity      string      `db:"activity"`
	Neighborhood  string      `db:"neighborhood"`
	Schedule      null.String `db:"schedule"`
	Location      null.String `db:"location"`
	NumInterested int         `db:"num_interested"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func toDemandRow(d demand.Demand) demandRow {
	return demandRow{
		ID:            d.ID,
		UserID:        d.UserID,
		Activity:      d.Activity,
		Neighborhood:  d.Neighborhood,
		Schedule:      null.NewString(d.Schedule, d.Schedule != ""),
		Location:      null.NewString(d.Location, d.Location != ""),
		NumInterested: d.NumInterested,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

func (r demandRow) demand() demand.Demand {
	return demand.Demand{
		ID:            r.ID,
		UserID:        r.UserID,
		AuthorName:    r.AuthorName,
		Activity:      r.Activity,
		Neighborhood:  r.Neighborhood,
		Schedule:      r.Schedule.String,
		Location:      r.Location.String,
		NumInterested: r.NumInterested,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type demandRepository struct {
	repository
}

var _ demand.Repository = (*demandRepository)(nil)

func NewDemandRepository(db *sqlx.DB) *demandRepository {
	return &demandRepository{repository{db: db}}
}

func (repo demandRepository) ListDemands(ctx context.Context, exec ...core.DBExecutor) ([]demand.Demand, error) {
	var rows []demandRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, demandSelect+" ORDER BY d.created_at DESC"); err != nil {
		return nil, errors.Wrap(err, "selecting demands")
	}
	demands := make([]demand.Demand, 0, len(rows))
	for _, r := range rows {
		demands = append(demands, r.demand())
	}
	return demands, nil
}

func (repo demandRepository) GetDemand(ctx context.Context, id string, exec ...core.DBExecutor) (demand.Demand, error) {
	if !isUUID(id) {
		return demand.Demand{}, demand.ErrNotFound
	}
	var row demandRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, demandSelect+" WHERE d.id = $1", id); err != nil {
		return demand.Demand{}, trapNoRowsErr(err, demand.ErrNotFound, "getting demand")
	}
	return row.demand(), nil
}

func (repo demandRepository) CreateDemand(ctx context.Context, d demand.Demand, exec ...core.DBExecutor) (demand.Demand, error) {
	d.ID = uuid.New().String()
	_, err := sqlx.NamedExecContext(ctx, repo.getExec(exec),
		`INSERT INTO demands (id, user_id, activity, neighborhood, schedule, location, num_interested, created_at, updated_at)
		VALUES (:id, :user_id, :activity, :neighborhood, :schedule, :location, :num_interested, :created_at, :updated_at)`,
		toDemandRow(d))
	if err != nil {
		return demand.Demand{}, errors.Wrap(err, "inserting demand")
	}
	return repo.GetDemand(ctx, d.ID, exec...)
}

func (repo demandRepository) UpdateDemand(ctx context.Context, d demand.Demand, exec ...core.DBExecutor) (demand.Demand, error) {
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec),
		`UPDATE demands SET activity = :activity, neighborhood = :neighborhood, schedule = :schedule,
		location = :location, updated_at = :updated_at WHERE id = :id`, toDemandRow(d))
	if err != nil {
		return demand.Demand{}, errors.Wrap(err, "updating demand")
	}
	if err = checkAffected(res, demand.ErrNotFound, "updating demand"); err != nil {
		return demand.Demand{}, err
	}
	return d, nil
}

func (repo demandRepository) DeleteDemand(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if !isUUID(id) {
		return demand.ErrNotFound
	}
	res, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM demands WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting demand")
	}
	return checkAffected(res, demand.ErrNotFound, "deleting demand")
}

func (repo demandRepository) IncrementInterest(ctx context.Context, id string, exec ...core.DBExecutor) (demand.Demand, error) {
	if !isUUID(id) {
		return demand.Demand{}, demand.ErrNotFound
	}
	res, err := repo.getExec(exec).ExecContext(ctx,
		"UPDATE demands SET num_interested = num_interested + 1, updated_at = $2 WHERE id = $1", id, time.Now().UTC())
	if err != nil {
		return demand.Demand{}, errors.Wrap(err, "incrementing interest")
	}
	if err = checkAffected(res, demand.ErrNotFound, "incrementing interest"); err != nil {
		return demand.Demand{}, err
	}
	return repo.GetDemand(ctx, id, exec...)
}
