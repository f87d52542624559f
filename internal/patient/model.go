package patient

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// DOBLayout is the calendar-date layout dob values are stored in.
const DOBLayout = "2006-01-02"

type Patient struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	DOB       string    `json:"dob"`
	Gender    Gender    `json:"gender"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateInput struct {
	Name   string  `json:"name" validate:"notblank"`
	DOB    string  `json:"dob" validate:"required,datetime=2006-01-02"`
	Gender string  `json:"gender" validate:"required,oneof=Male Female Other"`
	Phone  *string `json:"phone,omitempty"`
}

// UpdateInput is a partial update: nil fields are left untouched.
type UpdateInput struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,notblank"`
	DOB    *string `json:"dob,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender *string `json:"gender,omitempty" validate:"omitempty,oneof=Male Female Other"`
	Phone  *string `json:"phone,omitempty"`
}

// Changes is the normalized form of an UpdateInput handed to the store.
type Changes struct {
	Name   *string
	DOB    *string
	Gender *Gender
	Phone  *string
}
