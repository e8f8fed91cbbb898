package professional

import (
	"context"
	"errors"
	"time"

	"github.com/fitsenior/backend/core"
)

var (
	ErrNotFound = errors.New("professional not found")
	ErrExists   = errors.New("professional record already exists")
)

type (
	Repository interface {
		CreateProfessional(ctx context.Context, p Professional, exec ...core.DBExecutor) (Professional, error)
		GetProfessional(ctx context.Context, id string, exec ...core.DBExecutor) (Professional, error)
		GetProfessionalByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (Professional, error)
		UpdateProfessional(ctx context.Context, p Professional, exec ...core.DBExecutor) (Professional, error)
	}

	Service interface {
		Create(ctx context.Context, userID string, np NewProfessional) (Professional, error)
		GetByID(ctx context.Context, id string) (Professional, error)
		GetByUserID(ctx context.Context, userID string) (Professional, error)
		Update(ctx context.Context, userID string, up UpdateProfessional) (Professional, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, userID string, np NewProfessional) (Professional, error) {
	now := time.Now().UTC()
	return svc.repo.CreateProfessional(ctx, Professional{
		UserID:    userID,
		FullName:  np.FullName,
		Email:     np.Email,
		Phone:     np.Phone,
		CPF:       np.CPF,
		CREF:      np.CREF,
		Address:   np.Address,
		BirthDate: core.Date(np.BirthDate),
		Gender:    np.Gender,
		Specialty: np.Specialty,
		Bio:       np.Bio,
		AvatarURL: np.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) GetByID(ctx context.Context, id string) (Professional, error) {
	return svc.repo.GetProfessional(ctx, id)
}

func (svc *service) GetByUserID(ctx context.Context, userID string) (Professional, error) {
	return svc.repo.GetProfessionalByUserID(ctx, userID)
}

func (svc *service) Update(ctx context.Context, userID string, up UpdateProfessional) (Professional, error) {
	p, err := svc.repo.GetProfessionalByUserID(ctx, userID)
	if err != nil {
		return Professional{}, err
	}
	p = up.apply(p)
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProfessional(ctx, p)
}
