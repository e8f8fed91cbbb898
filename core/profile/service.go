package profile

import (
	"context"
	"errors"
	"time"

	"github.com/fitsenior/backend/core"
)

var ErrNotFound = errors.New("profile not found")

type (
	Repository interface {
		CreateProfile(ctx context.Context, p Profile, exec ...core.DBExecutor) (Profile, error)
		GetProfile(ctx context.Context, id string, exec ...core.DBExecutor) (Profile, error)
		UpdateProfile(ctx context.Context, p Profile, exec ...core.DBExecutor) (Profile, error)
	}

	Service interface {
		Get(ctx context.Context, id string) (Profile, error)
		Update(ctx context.Context, id string, up UpdateProfile) (Profile, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Get(ctx context.Context, id string) (Profile, error) {
	return svc.repo.GetProfile(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, up UpdateProfile) (Profile, error) {
	p, err := svc.repo.GetProfile(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	p = up.apply(p)
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProfile(ctx, p)
}
