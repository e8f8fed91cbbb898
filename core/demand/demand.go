package demand

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fitsenior/backend/core"
)

var (
	ErrNotFound     = errors.New("demand not found")
	ErrNotFoundOwns = errors.New("demand not found or no permission")
)

// Demand is a request for an activity somewhere, that other users can join by expressing interest.
type Demand struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	AuthorName    string    `json:"author_name"`
	Activity      string    `json:"activity"`
	Neighborhood  string    `json:"neighborhood"`
	Schedule      string    `json:"schedule"`
	Location      string    `json:"location"`
	NumInterested int       `json:"num_interested"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type NewDemand struct {
	Activity     string `json:"activity" validate:"required,notblank,max=100"`
	Neighborhood string `json:"neighborhood" validate:"required,notblank,max=100"`
	Schedule     string `json:"schedule" validate:"max=100"`
	Location     string `json:"location" validate:"max=255"`
}

func (nd *NewDemand) Validate(validate *validator.Validate) error {
	nd.Activity = core.CleanString(nd.Activity)
	nd.Neighborhood = core.CleanString(nd.Neighborhood)
	nd.Schedule = core.CleanString(nd.Schedule)
	nd.Location = core.CleanString(nd.Location)
	return validate.Struct(nd)
}

type UpdateDemand struct {
	Activity     *string `json:"activity" validate:"omitempty,notblank,max=100"`
	Neighborhood *string `json:"neighborhood" validate:"omitempty,notblank,max=100"`
	Schedule     *string `json:"schedule" validate:"omitempty,max=100"`
	Location     *string `json:"location" validate:"omitempty,max=255"`
}

func (ud *UpdateDemand) Validate(validate *validator.Validate) error {
	ud.Activity = core.CleanStringPtr(ud.Activity)
	ud.Neighborhood = core.CleanStringPtr(ud.Neighborhood)
	ud.Schedule = core.CleanStringPtr(ud.Schedule)
	ud.Location = core.CleanStringPtr(ud.Location)
	return validate.Struct(ud)
}

func (ud UpdateDemand) apply(d Demand) Demand {
	if ud.Activity != nil {
		d.Activity = *ud.Activity
	}
	if ud.Neighborhood != nil {
		d.Neighborhood = *ud.Neighborhood
	}
	if ud.Schedule != nil {
		d.Schedule = *ud.Schedule
	}
	if ud.Location != nil {
		d.Location = *ud.Location
	}
	return d
}

type (
	Repository interface {
		ListDemands(ctx context.Context, exec ...core.DBExecutor) ([]Demand, error)
		GetDemand(ctx context.Context, id string, exec ...core.DBExecutor) (Demand, error)
		CreateDemand(ctx context.Context, d Demand, exec ...core.DBExecutor) (Demand, error)
		UpdateDemand(ctx context.Context, d Demand, exec ...core.DBExecutor) (Demand, error)
		DeleteDemand(ctx context.Context, id string, exec ...core.DBExecutor) error
		// IncrementInterest atomically adds one to num_interested and returns the updated demand.
		IncrementInterest(ctx context.Context, id string, exec ...core.DBExecutor) (Demand, error)
	}

	Service interface {
		List(ctx context.Context) ([]Demand, error)
		Get(ctx context.Context, id string) (Demand, error)
		Create(ctx context.Context, userID string, nd NewDemand) (Demand, error)
		Update(ctx context.Context, userID, id string, ud UpdateDemand) (Demand, error)
		Delete(ctx context.Context, userID, id string) error
		ExpressInterest(ctx context.Context, id string) (Demand, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) List(ctx context.Context) ([]Demand, error) {
	return svc.repo.ListDemands(ctx)
}

func (svc *service) Get(ctx context.Context, id string) (Demand, error) {
	return svc.repo.GetDemand(ctx, id)
}

func (svc *service) Create(ctx context.Context, userID string, nd NewDemand) (Demand, error) {
	now := time.Now().UTC()
	return svc.repo.CreateDemand(ctx, Demand{
		UserID:       userID,
		Activity:     nd.Activity,
		Neighborhood: nd.Neighborhood,
		Schedule:     nd.Schedule,
		Location:     nd.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *service) owned(ctx context.Context, userID, id string) (Demand, error) {
	d, err := svc.repo.GetDemand(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return Demand{}, ErrNotFoundOwns
		}
		return Demand{}, err
	}
	if d.UserID != userID {
		return Demand{}, ErrNotFoundOwns
	}
	return d, nil
}

func (svc *service) Update(ctx context.Context, userID, id string, ud UpdateDemand) (Demand, error) {
	d, err := svc.owned(ctx, userID, id)
	if err != nil {
		return Demand{}, err
	}
	d = ud.apply(d)
	d.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateDemand(ctx, d)
}

func (svc *service) Delete(ctx context.Context, userID, id string) error {
	if _, err := svc.owned(ctx, userID, id); err != nil {
		return err
	}
	return svc.repo.DeleteDemand(ctx, id)
}

func (svc *service) ExpressInterest(ctx context.Context, id string) (Demand, error) {
	return svc.repo.IncrementInterest(ctx, id)
}
