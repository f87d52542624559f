package doctor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu      sync.RWMutex
	doctors map[uuid.UUID]Doctor
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{doctors: make(map[uuid.UUID]Doctor)}
}

func (s *MemoryStore) Create(_ context.Context, d *Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now()
	d.CreatedAt, d.UpdatedAt = now, now
	s.doctors[d.ID] = *d
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Doctor, 0, len(s.doctors))
	for _, d := range s.doctors {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID.String() > result[j].ID.String()
	})
	return result, nil
}
