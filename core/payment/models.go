package payment

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// Statuses
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

type Payment struct {
	ID           string    `json:"id"`
	ClassID      string    `json:"class_id"`
	EnrollmentID string    `json:"enrollment_id"`
	Amount       float64   `json:"amount"`
	PaymentDate  time.Time `json:"payment_date"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	ClassTitle   string    `json:"class_title,omitempty"`
	StudentName  string    `json:"student_name,omitempty"`
}

type NewPayment struct {
	EnrollmentID string     `json:"enrollment_id" validate:"required"`
	Amount       float64    `json:"amount" validate:"gt=0"`
	PaymentDate  *time.Time `json:"payment_date"`
	Status       string     `json:"status" validate:"omitempty,oneof=pending paid cancelled"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	if np.Status == "" {
		np.Status = StatusPaid
	}
	return validate.Struct(np)
}

// Filter narrows a payment listing. Empty fields are ignored.
type Filter struct {
	ProfessionalID string
	UserID         string // payments of the enrollments of this user
	ClassID        string
	Status         string
	From, To       *time.Time // payment_date in [From, To)
}

type MonthTotal struct {
	Month int     `json:"month"`
	Total float64 `json:"total"`
}

type Summary struct {
	Year    int          `json:"year"`
	Monthly []MonthTotal `json:"monthly"`
	Total   float64      `json:"total"`
	Count   int          `json:"count"`
}

// NewSummary totals the paid payments of a year by month.
func NewSummary(year int, payments []Payment) Summary {
	s := Summary{Year: year, Monthly: make([]MonthTotal, 12)}
	for i := range s.Monthly {
		s.Monthly[i].Month = i + 1
	}
	for _, p := range payments {
		if p.Status != StatusPaid || p.PaymentDate.Year() != year {
			continue
		}
		s.Monthly[p.PaymentDate.Month()-1].Total += p.Amount
		s.Total += p.Amount
		s.Count++
	}
	for i := range s.Monthly {
		s.Monthly[i].Total = round2(s.Monthly[i].Total)
	}
	s.Total = round2(s.Total)
	return s
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
