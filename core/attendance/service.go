package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/class"
	"github.com/fitsenior/backend/core/enrollment"
)

var (
	ErrForbidden          = errors.New("permission denied")
	ErrForeignEnrollment  = errors.New("enrollment does not belong to this class")
	ErrEnrollmentNotFound = enrollment.ErrNotFound
)

type (
	Repository interface {
		// UpsertAttendance creates or replaces the record of (EnrollmentID, Date).
		UpsertAttendance(ctx context.Context, r Record, exec ...core.DBExecutor) (Record, error)
		// ListClassAttendance returns the records of a class, of a single day if date is not nil.
		ListClassAttendance(ctx context.Context, classID string, date *time.Time, exec ...core.DBExecutor) ([]ClassRecord, error)
		ListEnrollmentAttendance(ctx context.Context, enrollmentID string, exec ...core.DBExecutor) ([]Record, error)
	}

	Service interface {
		Take(ctx context.Context, userID, classID string, rc RollCall) ([]Record, error)
		ListForClass(ctx context.Context, userID, classID string, date *time.Time) ([]ClassRecord, error)
		Frequency(ctx context.Context, userID, enrollmentID string) (Frequency, error)
		Sheet(ctx context.Context, userID, classID string) (Sheet, error)
	}

	service struct {
		tx             core.Transactor
		repo           Repository
		enrollmentRepo enrollment.Repository
		classSvc       class.Service
	}
)

var _ Service = (*service)(nil)

func NewService(tx core.Transactor, repo Repository, enrollmentRepo enrollment.Repository, classSvc class.Service) Service {
	return &service{tx: tx, repo: repo, enrollmentRepo: enrollmentRepo, classSvc: classSvc}
}

func (svc *service) owned(ctx context.Context, userID, classID string) (class.Class, error) {
	c, err := svc.classSvc.GetOwned(ctx, userID, classID)
	if err == class.ErrForbidden {
		return class.Class{}, ErrForbidden
	}
	return c, err
}

func (svc *service) Take(ctx context.Context, userID, classID string, rc RollCall) ([]Record, error) {
	if _, err := svc.owned(ctx, userID, classID); err != nil {
		return nil, err
	}

	date := core.Date(rc.Date)
	now := time.Now().UTC()
	records := make([]Record, 0, len(rc.Records))
	err := svc.tx.WithTx(ctx, func(ctx context.Context, exec core.DBExecutor) error {
		for _, m := range rc.Records {
			e, err := svc.enrollmentRepo.GetEnrollment(ctx, m.EnrollmentID, exec)
			if err != nil {
				return err
			}
			if e.ClassID != classID {
				return ErrForeignEnrollment
			}
			r, err := svc.repo.UpsertAttendance(ctx, Record{
				EnrollmentID: e.ID,
				Date:         date,
				Present:      m.Present,
				CreatedAt:    now,
			}, exec)
			if err != nil {
				return err
			}
			records = append(records, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (svc *service) ListForClass(ctx context.Context, userID, classID string, date *time.Time) ([]ClassRecord, error) {
	if _, err := svc.owned(ctx, userID, classID); err != nil {
		return nil, err
	}
	if date != nil {
		d := core.Date(*date)
		date = &d
	}
	return svc.repo.ListClassAttendance(ctx, classID, date)
}

func (svc *service) Frequency(ctx context.Context, userID, enrollmentID string) (Frequency, error) {
	e, err := svc.enrollmentRepo.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return Frequency{}, err
	}
	if e.UserID != userID {
		if _, err = svc.owned(ctx, userID, e.ClassID); err != nil {
			return Frequency{}, err
		}
	}

	records, err := svc.repo.ListEnrollmentAttendance(ctx, enrollmentID)
	if err != nil {
		return Frequency{}, err
	}
	return NewFrequency(records), nil
}

func (svc *service) Sheet(ctx context.Context, userID, classID string) (Sheet, error) {
	c, err := svc.owned(ctx, userID, classID)
	if err != nil {
		return Sheet{}, err
	}
	members, err := svc.enrollmentRepo.ListClassMembers(ctx, classID)
	if err != nil {
		return Sheet{}, err
	}
	records, err := svc.repo.ListClassAttendance(ctx, classID, nil)
	if err != nil {
		return Sheet{}, err
	}

	sm := make([]SheetMember, 0, len(members))
	for _, m := range members {
		sm = append(sm, SheetMember{EnrollmentID: m.ID, StudentName: m.StudentName})
	}
	return NewSheet(c.Title, sm, records), nil
}
