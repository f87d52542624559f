package patient

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a map-backed Store for local runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]Patient
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		patients: make(map[uuid.UUID]Patient),
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, p *Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.patients[p.ID] = *p
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Patient, 0, len(s.patients))
	for _, p := range s.patients {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID.String() > result[j].ID.String()
	})
	return result, nil
}

func (s *MemoryStore) Update(_ context.Context, id uuid.UUID, ch Changes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.patients[id]
	if !ok {
		return ErrPatientNotFound
	}
	if ch.Name != nil {
		p.Name = *ch.Name
	}
	if ch.DOB != nil {
		p.DOB = *ch.DOB
	}
	if ch.Gender != nil {
		p.Gender = *ch.Gender
	}
	if ch.Phone != nil {
		phone := *ch.Phone
		p.Phone = &phone
	}
	p.UpdatedAt = s.now()
	s.patients[id] = p
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.patients, id)
	return nil
}
