package enrollment

import (
	"time"

	"github.com/fitsenior/backend/core"
)

// Statuses
const (
	StatusEnrolled  = "enrolled"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Enroll attempt results, as reported to the Recorder.
const (
	ResultEnrolled  = "enrolled"
	ResultFull      = "full"
	ResultDuplicate = "duplicate"
	ResultNotFound  = "not_found"
	ResultError     = "error"
)

type Enrollment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ClassID   string    `json:"class_id"`
	StudentID string    `json:"student_id,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type ClassSummary struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Schedule string    `json:"schedule"`
	Location string    `json:"location"`
	Category string    `json:"category"`
	Level    string    `json:"level"`
}

// Item is an enrollment of the caller, with what is needed to display its class.
type Item struct {
	Enrollment
	Class            ClassSummary `json:"class"`
	ProfessionalName string       `json:"professional_name"`
}

// Member is an enrollment as seen from the class roster.
type Member struct {
	Enrollment
	StudentName      string `json:"student_name"`
	StudentAvatarURL string `json:"student_avatar_url"`
}

type NewEnrollment struct {
	ClassID string `json:"class_id"`
}

func (ne *NewEnrollment) Validate() error {
	ne.ClassID = core.CleanString(ne.ClassID)
	if ne.ClassID == "" {
		return ErrClassIDRequired
	}
	return nil
}

type UpdateStatus struct {
	Status string `json:"status" validate:"required,oneof=enrolled cancelled completed"`
}
