package payment

import (
	"context"
	"errors"
	"time"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/class"
	"github.com/fitsenior/backend/core/enrollment"
	"github.com/fitsenior/backend/core/session"
)

var ErrForbidden = errors.New("permission denied")

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment, exec ...core.DBExecutor) (Payment, error)
		// ListPayments returns the payments matching filter, by payment_date descending.
		ListPayments(ctx context.Context, filter Filter, exec ...core.DBExecutor) ([]Payment, error)
	}

	Service interface {
		Create(ctx context.Context, userID string, np NewPayment) (Payment, error)
		List(ctx context.Context, sess session.Session, classID string) ([]Payment, error)
		Summary(ctx context.Context, sess session.Session, year int) (Summary, error)
	}

	service struct {
		repo           Repository
		enrollmentRepo enrollment.Repository
		classSvc       class.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, enrollmentRepo enrollment.Repository, classSvc class.Service) Service {
	return &service{repo: repo, enrollmentRepo: enrollmentRepo, classSvc: classSvc}
}

func (svc *service) Create(ctx context.Context, userID string, np NewPayment) (Payment, error) {
	e, err := svc.enrollmentRepo.GetEnrollment(ctx, np.EnrollmentID)
	if err != nil {
		return Payment{}, err
	}
	if _, err = svc.classSvc.GetOwned(ctx, userID, e.ClassID); err != nil {
		if err == class.ErrForbidden {
			return Payment{}, ErrForbidden
		}
		return Payment{}, err
	}

	now := time.Now().UTC()
	date := core.Date(now)
	if np.PaymentDate != nil {
		date = core.Date(*np.PaymentDate)
	}
	return svc.repo.CreatePayment(ctx, Payment{
		ClassID:      e.ClassID,
		EnrollmentID: e.ID,
		Amount:       np.Amount,
		PaymentDate:  date,
		Status:       np.Status,
		CreatedAt:    now,
	})
}

func (svc *service) List(ctx context.Context, sess session.Session, classID string) ([]Payment, error) {
	filter := Filter{ClassID: classID}
	switch {
	case sess.IsProfessional():
		filter.ProfessionalID = sess.Professional.ID
	case sess.IsStudent():
		filter.UserID = sess.UserID()
	default:
		return nil, ErrForbidden
	}
	return svc.repo.ListPayments(ctx, filter)
}

func (svc *service) Summary(ctx context.Context, sess session.Session, year int) (Summary, error) {
	if !sess.IsProfessional() {
		return Summary{}, ErrForbidden
	}
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	payments, err := svc.repo.ListPayments(ctx, Filter{
		ProfessionalID: sess.Professional.ID,
		Status:         StatusPaid,
		From:           &from,
		To:             &to,
	})
	if err != nil {
		return Summary{}, err
	}
	return NewSummary(year, payments), nil
}
