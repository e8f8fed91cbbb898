package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fitsenior/backend/core"
)

// Levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

type Class struct {
	ID             string    `json:"id"`
	ProfessionalID string    `json:"professional_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Date           time.Time `json:"date"`
	Duration       int       `json:"duration"` // minutes
	Capacity       int       `json:"capacity"`
	MaxStudents    int       `json:"max_students"`
	Location       string    `json:"location"`
	Category       string    `json:"category"`
	Level          string    `json:"level"`
	Activity       string    `json:"activity"`
	Schedule       string    `json:"schedule"`
	Price          float64   `json:"price"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EffectiveCapacity is the enrollment limit of the class; 0 means unlimited.
// capacity wins over max_students when both are set.
func (c Class) EffectiveCapacity() int {
	if c.Capacity > 0 {
		return c.Capacity
	}
	if c.MaxStudents > 0 {
		return c.MaxStudents
	}
	return 0
}

// Detail is a Class as listed to clients.
type Detail struct {
	Class
	ProfessionalName   string `json:"professional_name"`
	ProfessionalUserID string `json:"professional_user_id"`
	EnrollmentCount    int    `json:"enrollment_count"`
	// AvailableSpots is nil for classes without a limit.
	AvailableSpots *int `json:"available_spots"`
}

// ComputeSpots fills AvailableSpots from the capacity and EnrollmentCount.
func (d *Detail) ComputeSpots() {
	limit := d.EffectiveCapacity()
	if limit == 0 {
		d.AvailableSpots = nil
		return
	}
	spots := limit - d.EnrollmentCount
	if spots < 0 {
		spots = 0
	}
	d.AvailableSpots = &spots
}

func (d Detail) IsFull() bool {
	return d.AvailableSpots != nil && *d.AvailableSpots == 0
}

type QueryFilter struct {
	Location       string
	Category       string
	Level          string
	ProfessionalID string
	Search         string
	Available      bool
	Ordering       []core.DBOrdering
}

// OrderingColumns maps the accepted `ordering` fields to their columns.
var OrderingColumns = map[string]string{
	"created_at": "created_at",
	"date":       "date",
	"title":      "title",
	"price":      "price",
}

type NewClass struct {
	Title       string    `json:"title" validate:"required,notblank,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	Date        time.Time `json:"date" validate:"required"`
	Duration    int       `json:"duration" validate:"min=0"`
	Capacity    int       `json:"capacity" validate:"min=0"`
	MaxStudents int       `json:"max_students" validate:"min=0"`
	Location    string    `json:"location" validate:"max=255"`
	Category    string    `json:"category" validate:"max=100"`
	Level       string    `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Activity    string    `json:"activity" validate:"max=100"`
	Schedule    string    `json:"schedule" validate:"max=100"`
	Price       float64   `json:"price" validate:"min=0"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Location = core.CleanString(nc.Location)
	nc.Category = core.CleanString(nc.Category)
	nc.Level = core.CleanString(nc.Level, true /* lower */)
	nc.Activity = core.CleanString(nc.Activity)
	nc.Schedule = core.CleanString(nc.Schedule)
	if nc.Level == "" {
		nc.Level = LevelBeginner
	}
	return validate.Struct(nc)
}

// UpdateClass defines what a professional may change on a class; nil fields are left untouched.
type UpdateClass struct {
	Title       *string    `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Date        *time.Time `json:"date"`
	Duration    *int       `json:"duration" validate:"omitempty,min=0"`
	Capacity    *int       `json:"capacity" validate:"omitempty,min=0"`
	MaxStudents *int       `json:"max_students" validate:"omitempty,min=0"`
	Location    *string    `json:"location" validate:"omitempty,max=255"`
	Category    *string    `json:"category" validate:"omitempty,max=100"`
	Level       *string    `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Activity    *string    `json:"activity" validate:"omitempty,max=100"`
	Schedule    *string    `json:"schedule" validate:"omitempty,max=100"`
	Price       *float64   `json:"price" validate:"omitempty,min=0"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	uc.Title = core.CleanStringPtr(uc.Title)
	uc.Description = core.CleanStringPtr(uc.Description)
	uc.Location = core.CleanStringPtr(uc.Location)
	uc.Category = core.CleanStringPtr(uc.Category)
	uc.Level = core.CleanStringPtr(uc.Level, true /* lower */)
	uc.Activity = core.CleanStringPtr(uc.Activity)
	uc.Schedule = core.CleanStringPtr(uc.Schedule)
	return validate.Struct(uc)
}

func (uc UpdateClass) apply(c Class) Class {
	if uc.Title != nil {
		c.Title = *uc.Title
	}
	if uc.Description != nil {
		c.Description = *uc.Description
	}
	if uc.Date != nil {
		c.Date = uc.Date.UTC()
	}
	if uc.Duration != nil {
		c.Duration = *uc.Duration
	}
	if uc.Capacity != nil {
		c.Capacity = *uc.Capacity
	}
	if uc.MaxStudents != nil {
		c.MaxStudents = *uc.MaxStudents
	}
	if uc.Location != nil {
		c.Location = *uc.Location
	}
	if uc.Category != nil {
		c.Category = *uc.Category
	}
	if uc.Level != nil {
		c.Level = *uc.Level
	}
	if uc.Activity != nil {
		c.Activity = *uc.Activity
	}
	if uc.Schedule != nil {
		c.Schedule = *uc.Schedule
	}
	if uc.Price != nil {
		c.Price = *uc.Price
	}
	return c
}
