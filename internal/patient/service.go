package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-appointments/internal/validation"
)

// Invalidator drops any cached copy of a patient.
type Invalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, uuid.UUID) error { return nil }

type Service struct {
	store Store
	cache Invalidator
	log   zerolog.Logger
}

// NewService wires the patient service. cache may be nil.
func NewService(store Store, cache Invalidator, log zerolog.Logger) *Service {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &Service{store: store, cache: cache, log: log}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (uuid.UUID, error) {
	if err := validation.Struct(in); err != nil {
		return uuid.Nil, err
	}

	p := &Patient{
		Name:   strings.TrimSpace(in.Name),
		DOB:    in.DOB,
		Gender: Gender(in.Gender),
		Phone:  in.Phone,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return uuid.Nil, fmt.Errorf("create patient: %w", err)
	}
	return p.ID, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Patient, error) {
	ps, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return ps, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) error {
	ch, err := normalizeUpdate(in)
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, id, ch); err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// Delete removes the patient. Appointments that reference it are kept.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("patient_id", id.String()).Msg("patient cache invalidation failed")
	}
}

func normalizeUpdate(in UpdateInput) (Changes, error) {
	if err := validation.Struct(in); err != nil {
		return Changes{}, err
	}

	ch := Changes{DOB: in.DOB, Phone: in.Phone}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		ch.Name = &name
	}
	if in.Gender != nil {
		g := Gender(*in.Gender)
		ch.Gender = &g
	}
	return ch, nil
}
