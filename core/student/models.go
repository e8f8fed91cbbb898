package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fitsenior/backend/core"
)

type Student struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	FullName             string    `json:"full_name"`
	Gender               string    `json:"gender"`
	Phone                string    `json:"phone"`
	Email                string    `json:"email"`
	CPF                  string    `json:"cpf"`
	Address              string    `json:"address"`
	BirthDate            time.Time `json:"birth_date"`
	HealthCertificateURL string    `json:"health_certificate_url"`
	AvatarURL            string    `json:"avatar_url"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewStudent contains the onboarding form of a student.
type NewStudent struct {
	FullName  string    `json:"full_name" validate:"required,notblank,max=120"`
	Gender    string    `json:"gender" validate:"required,oneof=female male other"`
	Phone     string    `json:"phone" validate:"required,max=30"`
	Email     string    `json:"email" validate:"required,email"`
	CPF       string    `json:"cpf" validate:"required,cpf"`
	Address   string    `json:"address" validate:"required,max=255"`
	BirthDate time.Time `json:"birth_date" validate:"required"`
	AvatarURL string    `json:"avatar_url" validate:"omitempty,url"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FullName = core.CleanString(ns.FullName)
	ns.Gender = core.CleanString(ns.Gender, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.CPF = core.CleanString(ns.CPF)
	ns.Address = core.CleanString(ns.Address)
	return validate.Struct(ns)
}

// UpdateStudent defines what a student may change on their record; nil fields are left untouched.
type UpdateStudent struct {
	FullName             *string    `json:"full_name" validate:"omitempty,notblank,max=120"`
	Gender               *string    `json:"gender" validate:"omitempty,oneof=female male other"`
	Phone                *string    `json:"phone" validate:"omitempty,max=30"`
	Email                *string    `json:"email" validate:"omitempty,email"`
	Address              *string    `json:"address" validate:"omitempty,max=255"`
	BirthDate            *time.Time `json:"birth_date"`
	HealthCertificateURL *string    `json:"health_certificate_url" validate:"omitempty,url"`
	AvatarURL            *string    `json:"avatar_url" validate:"omitempty,url"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.FullName = core.CleanStringPtr(us.FullName)
	us.Phone = core.CleanStringPtr(us.Phone)
	us.Email = core.CleanStringPtr(us.Email)
	us.Address = core.CleanStringPtr(us.Address)
	return validate.Struct(us)
}

func (us UpdateStudent) apply(s Student) Student {
	if us.FullName != nil {
		s.FullName = *us.FullName
	}
	if us.Gender != nil {
		s.Gender = *us.Gender
	}
	if us.Phone != nil {
		s.Phone = *us.Phone
	}
	if us.Email != nil {
		s.Email = *us.Email
	}
	if us.Address != nil {
		s.Address = *us.Address
	}
	if us.BirthDate != nil {
		s.BirthDate = core.Date(*us.BirthDate)
	}
	if us.HealthCertificateURL != nil {
		s.HealthCertificateURL = *us.HealthCertificateURL
	}
	if us.AvatarURL != nil {
		s.AvatarURL = *us.AvatarURL
	}
	return s
}
