package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-appointments/internal/validation"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (uuid.UUID, error) {
	if err := validation.Struct(in); err != nil {
		return uuid.Nil, err
	}

	d := &Doctor{
		Name:      strings.TrimSpace(in.Name),
		Specialty: strings.TrimSpace(in.Specialty),
		Phone:     in.Phone,
	}
	if err := s.store.Create(ctx, d); err != nil {
		return uuid.Nil, fmt.Errorf("create doctor: %w", err)
	}
	return d.ID, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	return d, nil
}

func (s *Service) List(ctx context.Context) ([]Doctor, error) {
	ds, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return ds, nil
}
