package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core"
	"github.com/fitsenior/backend/core/payment"
)

type paymentRow struct {
	ID           string    `db:"id"`
	ClassID      string    `db:"class_id"`
	EnrollmentID string    `db:"enrollment_id"`
	Amount       float64   `db:"amount"`
	PaymentDate  time.Time `db:"payment_date"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	ClassTitle   string    `db:"class_title"`
	StudentName  string    `db:"student_name"`
}

func (r paymentRow) payment() payment.Payment {
	return payment.Payment{
		ID:           r.ID,
		ClassID:      r.ClassID,
		EnrollmentID: r.EnrollmentID,
		Amount:       r.Amount,
		PaymentDate:  r.PaymentDate.UTC(),
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
		ClassTitle:   r.ClassTitle,
		StudentName:  r.StudentName,
	}
}

type paymentRepository struct {
	repository
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *sqlx.DB) *paymentRepository {
	return &paymentRepository{repository{db: db}}
}

func (repo paymentRepository) CreatePayment(ctx context.Context, p payment.Payment, exec ...core.DBExecutor) (payment.Payment, error) {
	p.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO payments (id, class_id, enrollment_id, amount, payment_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.ClassID, p.EnrollmentID, p.Amount, p.PaymentDate.UTC(), p.Status, p.CreatedAt.UTC())
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo paymentRepository) ListPayments(ctx context.Context, filter payment.Filter, exec ...core.DBExecutor) ([]payment.Payment, error) {
	w := new(where)
	if filter.ProfessionalID != "" {
		w.add("c.professional_id = ?", filter.ProfessionalID)
	}
	if filter.UserID != "" {
		w.add("e.user_id = ?", filter.UserID)
	}
	if filter.ClassID != "" {
		if !isUUID(filter.ClassID) {
			return []payment.Payment{}, nil
		}
		w.add("pa.class_id = ?", filter.ClassID)
	}
	if filter.Status != "" {
		w.add("pa.status = ?", filter.Status)
	}
	if filter.From != nil {
		w.add("pa.payment_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		w.add("pa.payment_date < ?", filter.To.UTC())
	}

	var rows []paymentRow
	err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows,
		`SELECT pa.id, pa.class_id, pa.enrollment_id, pa.amount, pa.payment_date, pa.status, pa.created_at,
			c.title AS class_title, COALESCE(s.full_name, pr.full_name, '') AS student_name
		FROM payments pa
			JOIN classes c ON c.id = pa.class_id
			JOIN enrollments e ON e.id = pa.enrollment_id
			LEFT JOIN students s ON s.id = e.student_id
			LEFT JOIN profiles pr ON pr.id = e.user_id`+w.String()+`
		ORDER BY pa.payment_date DESC, pa.created_at DESC`, w.args...)
	if err != nil {
		return nil, errors.Wrap(err, "selecting payments")
	}

	payments := make([]payment.Payment, 0, len(rows))
	for _, r := range rows {
		payments = append(payments, r.payment())
	}
	return payments, nil
}
