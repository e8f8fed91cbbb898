package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/class"
	"github.com/fitsenior/backend/core/enrollment"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil)

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db}
}

// activeCount must be called with db.mu held.
func (db *DB) activeCount(classID string) int {
	return len(db.enrollments.all(func(e enrollment.Enrollment) bool {
		return e.ClassID == classID && e.Status != enrollment.StatusCancelled
	}))
}

// detail must be called with db.mu held.
func (db *DB) detail(c class.Class) class.Detail {
	d := class.Detail{Class: c, EnrollmentCount: db.activeCount(c.ID)}
	if p, ok := db.professionals.get(c.ProfessionalID); ok {
		d.ProfessionalName = p.FullName
		d.ProfessionalUserID = p.UserID
	}
	d.ComputeSpots()
	return d
}

func (repo *classRepository) CreateClass(_ context.Context, c class.Class, _ ...core.DBExecutor) (class.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = newID()
	repo.db.classes.put(c.ID, c)
	return c, nil
}

func (repo *classRepository) GetClass(_ context.Context, id string, _ ...core.DBExecutor) (class.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.classes.get(id); ok {
		return c, nil
	}
	return class.Class{}, class.ErrNotFound
}

// LockClass relies on the transactor serialising transactions.
func (repo *classRepository) LockClass(ctx context.Context, id string, _ core.DBExecutor) (class.Class, error) {
	return repo.GetClass(ctx, id)
}

func (repo *classRepository) GetClassDetail(_ context.Context, id string, _ ...core.DBExecutor) (class.Detail, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	c, ok := repo.db.classes.get(id)
	if !ok {
		return class.Detail{}, class.ErrNotFound
	}
	return repo.db.detail(c), nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (repo *classRepository) ListClasses(_ context.Context, filter class.QueryFilter, _ ...core.DBExecutor) ([]class.Detail, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	classes := repo.db.classes.all(func(c class.Class) bool {
		switch {
		case filter.Location != "" && !containsFold(c.Location, filter.Location):
			return false
		case filter.Category != "" && c.Category != filter.Category:
			return false
		case filter.Level != "" && c.Level != filter.Level:
			return false
		case filter.ProfessionalID != "" && c.ProfessionalID != filter.ProfessionalID:
			return false
		case filter.Search != "" &&
			!(containsFold(c.Title, filter.Search) || containsFold(c.Activity, filter.Search) || containsFold(c.Description, filter.Search)):
			return false
		}
		return true
	})

	details := make([]class.Detail, 0, len(classes))
	for _, c := range classes {
		d := repo.db.detail(c)
		if filter.Available && d.IsFull() {
			continue
		}
		details = append(details, d)
	}
	sortClasses(details, filter.Ordering)
	return details, nil
}

func compareClasses(a, b class.Detail, field string) int {
	switch field {
	case "date":
		return compareTimes(a.Date, b.Date)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "price":
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		}
		return 0
	default:
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
}

func sortClasses(details []class.Detail, ords []core.DBOrdering) {
	sort.SliceStable(details, func(i, j int) bool {
		for _, ord := range ords {
			cmp := compareClasses(details[i], details[j], ord.Field)
			if cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
}

func (repo *classRepository) UpdateClass(_ context.Context, c class.Class, _ ...core.DBExecutor) (class.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.classes.get(c.ID); !ok {
		return class.Class{}, class.ErrNotFound
	}
	repo.db.classes.put(c.ID, c)
	return c, nil
}

func (repo *classRepository) DeleteClass(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if !repo.db.classes.delete(id) {
		return class.ErrNotFound
	}
	// ON DELETE CASCADE
	for _, e := range repo.db.enrollments.all(func(e enrollment.Enrollment) bool { return e.ClassID == id }) {
		repo.db.deleteEnrollment(e.ID)
	}
	for _, m := range repo.db.classMessages.all(nil) {
		if m.ClassID == id {
			repo.db.classMessages.delete(m.ID)
		}
	}
	return nil
}
