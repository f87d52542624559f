package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-appointments/internal/apperr"
)

var ErrPatientNotFound = fmt.Errorf("patient %w", apperr.ErrNotFound)

// Store persists patient records.
type Store interface {
	Create(ctx context.Context, p *Patient) error
	FindByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	// List returns every patient, newest first.
	List(ctx context.Context) ([]Patient, error)
	// Update applies ch and returns ErrPatientNotFound when id is unknown.
	Update(ctx context.Context, id uuid.UUID, ch Changes) error
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id uuid.UUID) error
}
