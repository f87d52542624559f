package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-appointments/internal/apperr"
)

var ErrDoctorNotFound = fmt.Errorf("doctor %w", apperr.ErrNotFound)

type Store interface {
	Create(ctx context.Context, d *Doctor) error
	FindByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	List(ctx context.Context) ([]Doctor, error)
}
