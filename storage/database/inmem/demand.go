package inmemdb

import (
	"context"
	"time"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/demand"
)

type demandRepository struct {
	db *DB
}

var _ demand.Repository = (*demandRepository)(nil)

func NewDemandRepository(db *DB) demand.Repository {
	return &demandRepository{db: db}
}

// withAuthor must be called with db.mu held.
func (db *DB) withAuthor(d demand.Demand) demand.Demand {
	d.AuthorName = db.summary(d.UserID).FullName
	return d
}

func (repo *demandRepository) ListDemands(_ context.Context, _ ...core.DBExecutor) ([]demand.Demand, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	demands := newestFirst(repo.db.demands.all(nil), func(d demand.Demand) time.Time { return d.CreatedAt })
	for i := range demands {
		demands[i] = repo.db.withAuthor(demands[i])
	}
	return demands, nil
}

func (repo *demandRepository) GetDemand(_ context.Context, id string, _ ...core.DBExecutor) (demand.Demand, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if d, ok := repo.db.demands.get(id); ok {
		return repo.db.withAuthor(d), nil
	}
	return demand.Demand{}, demand.ErrNotFound
}

func (repo *demandRepository) CreateDemand(_ context.Context, d demand.Demand, _ ...core.DBExecutor) (demand.Demand, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	d.ID = newID()
	repo.db.demands.put(d.ID, d)
	return repo.db.withAuthor(d), nil
}

func (repo *demandRepository) UpdateDemand(_ context.Context, d demand.Demand, _ ...core.DBExecutor) (demand.Demand, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.demands.get(d.ID); !ok {
		return demand.Demand{}, demand.ErrNotFound
	}
	repo.db.demands.put(d.ID, d)
	return repo.db.withAuthor(d), nil
}

func (repo *demandRepository) DeleteDemand(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if !repo.db.demands.delete(id) {
		return demand.ErrNotFound
	}
	return nil
}

func (repo *demandRepository) IncrementInterest(_ context.Context, id string, _ ...core.DBExecutor) (demand.Demand, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	d, ok := repo.db.demands.get(id)
	if !ok {
		return demand.Demand{}, demand.ErrNotFound
	}
	d.NumInterested++
	d.UpdatedAt = time.Now().UTC()
	repo.db.demands.put(d.ID, d)
	return repo.db.withAuthor(d), nil
}
