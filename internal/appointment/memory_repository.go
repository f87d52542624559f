package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRecord struct {
	Appointment
	seq uint64
}

// MemoryRepository is a map-backed Repository for local runs and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]memoryRecord
	seq     uint64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[uuid.UUID]memoryRecord)}
}

func (r *MemoryRepository) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.Status = StatusScheduled
	a.CreatedAt, a.UpdatedAt = now, now

	r.seq++
	r.records[a.ID] = memoryRecord{Appointment: *a, seq: r.seq}
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a := rec.Appointment
	return &a, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]Appointment, error) {
	r.mu.RLock()
	recs := make([]memoryRecord, 0, len(r.records))
	for _, rec := range r.records {
		recs = append(recs, rec)
	}
	r.mu.RUnlock()

	// Newer inserts win ties, matching created_at DESC in the postgres store.
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].ApptTime != recs[j].ApptTime {
			return recs[i].ApptTime > recs[j].ApptTime
		}
		return recs[i].seq > recs[j].seq
	})

	result := make([]Appointment, len(recs))
	for i, rec := range recs {
		result[i] = rec.Appointment
	}
	return result, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	rec.Status = status
	rec.UpdatedAt = time.Now()
	r.records[id] = rec
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id)
	return nil
}
