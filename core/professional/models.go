package professional

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fitsenior/backend/core"
)

type Professional struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CPF       string    `json:"cpf"`
	CREF      string    `json:"cref"`
	Address   string    `json:"address"`
	BirthDate time.Time `json:"birth_date"`
	Gender    string    `json:"gender"`
	Specialty string    `json:"specialty"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Card is the public view of a Professional; it hides documents and contact details.
type Card struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	FullName  string `json:"full_name"`
	Specialty string `json:"specialty"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

func (p Professional) Card() Card {
	return Card{
		ID:        p.ID,
		UserID:    p.UserID,
		FullName:  p.FullName,
		Specialty: p.Specialty,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
	}
}

type NewProfessional struct {
	FullName  string    `json:"full_name" validate:"required,notblank,max=120"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone" validate:"required,max=30"`
	CPF       string    `json:"cpf" validate:"required,cpf"`
	CREF      string    `json:"cref" validate:"required,notblank,max=30"`
	Address   string    `json:"address" validate:"required,max=255"`
	BirthDate time.Time `json:"birth_date" validate:"required"`
	Gender    string    `json:"gender" validate:"required,oneof=female male other"`
	Specialty string    `json:"specialty" validate:"max=120"`
	Bio       string    `json:"bio" validate:"max=2000"`
	AvatarURL string    `json:"avatar_url" validate:"omitempty,url"`
}

func (np *NewProfessional) Validate(validate *validator.Validate) error {
	np.FullName = core.CleanString(np.FullName)
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.Phone = core.CleanString(np.Phone)
	np.CPF = core.CleanString(np.CPF)
	np.CREF = core.CleanString(np.CREF)
	np.Address = core.CleanString(np.Address)
	np.Gender = core.CleanString(np.Gender, true /* lower */)
	np.Specialty = core.CleanString(np.Specialty)
	np.Bio = core.CleanString(np.Bio)
	return validate.Struct(np)
}

type UpdateProfessional struct {
	FullName  *string    `json:"full_name" validate:"omitempty,notblank,max=120"`
	Email     *string    `json:"email" validate:"omitempty,email"`
	Phone     *string    `json:"phone" validate:"omitempty,max=30"`
	Address   *string    `json:"address" validate:"omitempty,max=255"`
	BirthDate *time.Time `json:"birth_date"`
	Gender    *string    `json:"gender" validate:"omitempty,oneof=female male other"`
	Specialty *string    `json:"specialty" validate:"omitempty,max=120"`
	Bio       *string    `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL *string    `json:"avatar_url" validate:"omitempty,url"`
}

func (up *UpdateProfessional) Validate(validate *validator.Validate) error {
	up.FullName = core.CleanStringPtr(up.FullName)
	up.Email = core.CleanStringPtr(up.Email)
	up.Phone = core.CleanStringPtr(up.Phone)
	up.Address = core.CleanStringPtr(up.Address)
	up.Specialty = core.CleanStringPtr(up.Specialty)
	up.Bio = core.CleanStringPtr(up.Bio)
	return validate.Struct(up)
}

func (up UpdateProfessional) apply(p Professional) Professional {
	if up.FullName != nil {
		p.FullName = *up.FullName
	}
	if up.Email != nil {
		p.Email = *up.Email
	}
	if up.Phone != nil {
		p.Phone = *up.Phone
	}
	if up.Address != nil {
		p.Address = *up.Address
	}
	if up.BirthDate != nil {
		p.BirthDate = core.Date(*up.BirthDate)
	}
	if up.Gender != nil {
		p.Gender = *up.Gender
	}
	if up.Specialty != nil {
		p.Specialty = *up.Specialty
	}
	if up.Bio != nil {
		p.Bio = *up.Bio
	}
	if up.AvatarURL != nil {
		p.AvatarURL = *up.AvatarURL
	}
	return p
}
