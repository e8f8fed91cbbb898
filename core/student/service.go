package student

import (
	"context"
	"errors"
	"time"

	"github.com/fitsenior/backend/core"
)

var (
	ErrNotFound = errors.New("student not found")
	ErrExists   = errors.New("student record already exists")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student, exec ...core.DBExecutor) (Student, error)
		GetStudentByUserID(ctx context.Context, userID string, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, s Student, exec ...core.DBExecutor) (Student, error)
	}

	Service interface {
		Create(ctx context.Context, userID string, ns NewStudent) (Student, error)
		GetByUserID(ctx context.Context, userID string) (Student, error)
		Update(ctx context.Context, userID string, us UpdateStudent) (Student, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Create does not check for a professional record of the same user; session.Service.Onboard does.
func (svc *service) Create(ctx context.Context, userID string, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	return svc.repo.CreateStudent(ctx, Student{
		UserID:    userID,
		FullName:  ns.FullName,
		Gender:    ns.Gender,
		Phone:     ns.Phone,
		Email:     ns.Email,
		CPF:       ns.CPF,
		Address:   ns.Address,
		BirthDate: core.Date(ns.BirthDate),
		AvatarURL: ns.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) GetByUserID(ctx context.Context, userID string) (Student, error) {
	return svc.repo.GetStudentByUserID(ctx, userID)
}

func (svc *service) Update(ctx context.Context, userID string, us UpdateStudent) (Student, error) {
	s, err := svc.repo.GetStudentByUserID(ctx, userID)
	if err != nil {
		return Student{}, err
	}
	s = us.apply(s)
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, s)
}
