package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-appointments/internal/apperr"
)

var (
	ErrAppointmentNotFound     = fmt.Errorf("appointment %w", apperr.ErrNotFound)
	ErrInvalidStatusTransition = fmt.Errorf("%w: invalid status transition", apperr.ErrConflict)
)

// Repository owns appointment records. It applies no business rules: callers
// validate references and statuses before writing.
type Repository interface {
	// Create inserts a as Scheduled and fills in its id and timestamps.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// List returns every appointment ordered by appt_time, compared as
	// plain strings, descending.
	List(ctx context.Context) ([]Appointment, error)
	// UpdateStatus returns ErrAppointmentNotFound when id is unknown.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id uuid.UUID) error
}
