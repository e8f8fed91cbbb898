package inmemdb

import (
	"context"
	"sort"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/payment"
)

type paymentRepository struct {
	db *DB
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(_ context.Context, p payment.Payment, _ ...core.DBExecutor) (payment.Payment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p.ID = newID()
	repo.db.payments.put(p.ID, p)
	return p, nil
}

func (repo *paymentRepository) ListPayments(_ context.Context, filter payment.Filter, _ ...core.DBExecutor) ([]payment.Payment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	payments := make([]payment.Payment, 0)
	for _, p := range repo.db.payments.all(nil) {
		if filter.ClassID != "" && p.ClassID != filter.ClassID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.From != nil && p.PaymentDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !p.PaymentDate.Before(*filter.To) {
			continue
		}
		c, ok := repo.db.classes.get(p.ClassID)
		if !ok || (filter.ProfessionalID != "" && c.ProfessionalID != filter.ProfessionalID) {
			continue
		}
		e, ok := repo.db.enrollments.get(p.EnrollmentID)
		if !ok || (filter.UserID != "" && e.UserID != filter.UserID) {
			continue
		}
		p.ClassTitle = c.Title
		p.StudentName, _ = repo.db.memberName(e)
		payments = append(payments, p)
	}
	sort.SliceStable(payments, func(i, j int) bool {
		if cmp := compareTimes(payments[i].PaymentDate, payments[j].PaymentDate); cmp != 0 {
			return cmp > 0
		}
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	return payments, nil
}
