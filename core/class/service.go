package class

import (
	"context"
	"errors"
	"time"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/professional"
)

var (
	ErrNotFound             = errors.New("class not found")
	ErrForbidden            = errors.New("permission denied")
	ErrProfessionalNotFound = errors.New("professional not found, complete your registration first")
)

type (
	Repository interface {
		CreateClass(ctx context.Context, c Class, exec ...core.DBExecutor) (Class, error)
		GetClass(ctx context.Context, id string, exec ...core.DBExecutor) (Class, error)
		// LockClass reads a class and holds a write lock on its row until the end of the transaction.
		LockClass(ctx context.Context, id string, exec core.DBExecutor) (Class, error)
		GetClassDetail(ctx context.Context, id string, exec ...core.DBExecutor) (Detail, error)
		ListClasses(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Detail, error)
		UpdateClass(ctx context.Context, c Class, exec ...core.DBExecutor) (Class, error)
		DeleteClass(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service interface {
		List(ctx context.Context, filter QueryFilter) ([]Detail, error)
		ListMine(ctx context.Context, userID string) ([]Detail, error)
		Get(ctx context.Context, id string) (Detail, error)
		Create(ctx context.Context, userID string, nc NewClass) (Class, error)
		Update(ctx context.Context, userID, id string, uc UpdateClass) (Class, error)
		Delete(ctx context.Context, userID, id string) error
		// GetOwned returns the class if userID is its professional's account, ErrForbidden otherwise.
		GetOwned(ctx context.Context, userID, id string) (Class, error)
	}

	service struct {
		repo             Repository
		professionalRepo professional.Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, professionalRepo professional.Repository) Service {
	return &service{repo: repo, professionalRepo: professionalRepo}
}

func (svc *service) List(ctx context.Context, filter QueryFilter) ([]Detail, error) {
	filter.Ordering = core.MapOrderings(filter.Ordering, OrderingColumns)
	if len(filter.Ordering) == 0 {
		filter.Ordering = []core.DBOrdering{{Field: "created_at", Ascending: true}}
	}
	return svc.repo.ListClasses(ctx, filter)
}

func (svc *service) ListMine(ctx context.Context, userID string) ([]Detail, error) {
	pro, err := svc.professional(ctx, userID)
	if err != nil {
		return nil, err
	}
	return svc.List(ctx, QueryFilter{ProfessionalID: pro.ID})
}

func (svc *service) Get(ctx context.Context, id string) (Detail, error) {
	return svc.repo.GetClassDetail(ctx, id)
}

func (svc *service) Create(ctx context.Context, userID string, nc NewClass) (Class, error) {
	pro, err := svc.professional(ctx, userID)
	if err != nil {
		return Class{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateClass(ctx, Class{
		ProfessionalID: pro.ID,
		Title:          nc.Title,
		Description:    nc.Description,
		Date:           nc.Date.UTC(),
		Duration:       nc.Duration,
		Capacity:       nc.Capacity,
		MaxStudents:    nc.MaxStudents,
		Location:       nc.Location,
		Category:       nc.Category,
		Level:          nc.Level,
		Activity:       nc.Activity,
		Schedule:       nc.Schedule,
		Price:          nc.Price,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (svc *service) Update(ctx context.Context, userID, id string, uc UpdateClass) (Class, error) {
	c, err := svc.GetOwned(ctx, userID, id)
	if err != nil {
		return Class{}, err
	}
	c = uc.apply(c)
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, c)
}

func (svc *service) Delete(ctx context.Context, userID, id string) error {
	if _, err := svc.GetOwned(ctx, userID, id); err != nil {
		return err
	}
	return svc.repo.DeleteClass(ctx, id)
}

func (svc *service) GetOwned(ctx context.Context, userID, id string) (Class, error) {
	c, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	pro, err := svc.professionalRepo.GetProfessionalByUserID(ctx, userID)
	if err != nil {
		if err == professional.ErrNotFound {
			return Class{}, ErrForbidden
		}
		return Class{}, err
	}
	if c.ProfessionalID != pro.ID {
		return Class{}, ErrForbidden
	}
	return c, nil
}

func (svc *service) professional(ctx context.Context, userID string) (professional.Professional, error) {
	pro, err := svc.professionalRepo.GetProfessionalByUserID(ctx, userID)
	if err != nil {
		if err == professional.ErrNotFound {
			return professional.Professional{}, ErrProfessionalNotFound
		}
		return professional.Professional{}, err
	}
	return pro, nil
}
