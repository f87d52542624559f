package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Valid reports whether s is one of the three recognized statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses only accept themselves under strict transitions.
var strictTransitions = map[Status][]Status{
	StatusScheduled: {StatusScheduled, StatusCompleted, StatusCancelled},
	StatusCompleted: {StatusCompleted},
	StatusCancelled: {StatusCancelled},
}

// CanTransition reports whether the strict machine allows from -> to.
func CanTransition(from, to Status) bool {
	for _, allowed := range strictTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID        uuid.UUID
	PatientID string // opaque reference, never validated against the patient store
	DoctorID  string
	ApptTime  string // opaque ISO-8601 text, never parsed
	Reason    *string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// View is the listing row: an appointment plus the display names of the
// records it references. A name is nil when its lookup did not resolve.
type View struct {
	ID          uuid.UUID `json:"id"`
	ApptTime    string    `json:"appt_time"`
	PatientID   string    `json:"patient_id"`
	DoctorID    string    `json:"doctor_id"`
	PatientName *string   `json:"patient_name,omitempty"`
	DoctorName  *string   `json:"doctor_name,omitempty"`
	Status      Status    `json:"status"`
	Reason      *string   `json:"reason,omitempty"`
}

type CreateInput struct {
	PatientID string  `json:"patient_id" validate:"required"`
	DoctorID  string  `json:"doctor_id" validate:"required"`
	ApptTime  string  `json:"appt_time" validate:"required"`
	Reason    *string `json:"reason,omitempty"`
}

type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=Scheduled Completed Cancelled"`
}
