package profile

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fitsenior/backend/core"
)

// Profile holds the public data of an account. Its ID is the user ID.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is the slice of a Profile embedded in other resources (authors, senders, students...).
type Summary struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

func (p Profile) Summary() Summary {
	return Summary{ID: p.ID, FullName: p.FullName, AvatarURL: p.AvatarURL}
}

// UpdateProfile defines what information may be provided to modify a Profile.
// nil fields are left untouched.
type UpdateProfile struct {
	FullName  *string `json:"full_name" validate:"omitempty,notblank,max=120"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.FullName = core.CleanStringPtr(up.FullName)
	up.Phone = core.CleanStringPtr(up.Phone)
	up.AvatarURL = core.CleanStringPtr(up.AvatarURL)
	return validate.Struct(up)
}

func (up UpdateProfile) apply(p Profile) Profile {
	if up.FullName != nil {
		p.FullName = *up.FullName
	}
	if up.Phone != nil {
		p.Phone = *up.Phone
	}
	if up.AvatarURL != nil {
		p.AvatarURL = *up.AvatarURL
	}
	return p
}
