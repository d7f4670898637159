package repository

import (
	"context"
	"sync"
	"time"

	"pontoval/internal/domain/model"
	"pontoval/internal/domain/types"
	"pontoval/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultCapacity = 10000
)

// entry is the mutable outbox state for one submission.
type entry struct {
	status      string
	receivedAt  time.Time
	deliveredAt time.Time
}

// MemStore implements Store with a bounded in-memory map.
// When full, the oldest submission is evicted regardless of state.
type MemStore struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	order    []string // insertion order, oldest first
	capacity int
}

// NewMemStore creates a new in-memory outbox with configuration options.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		entries:  make(map[string]*entry),
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(s)
	}

	metrics.UpdateOutboxSize(0)
	return s
}

// Record registers an accepted submission as queued.
func (s *MemStore) Record(ctx context.Context, sub model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[sub.ID]; exists {
		return ErrAlreadyRecorded
	}

	if s.capacity > 0 && len(s.entries) >= s.capacity {
		s.evictOldest()
	}

	s.entries[sub.ID] = &entry{
		status:     types.StatusQueued,
		receivedAt: sub.ReceivedAt,
	}
	s.order = append(s.order, sub.ID)
	metrics.UpdateOutboxSize(len(s.entries))
	return nil
}

// MarkDelivered flips a submission to delivered.
func (s *MemStore) MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[id]
	if !exists {
		return false, ErrNotFound
	}
	if e.status == types.StatusDelivered {
		return false, nil
	}

	e.status = types.StatusDelivered
	e.deliveredAt = at
	return true, nil
}

// Status returns the current state for a receipt id.
func (s *MemStore) Status(ctx context.Context, id string) (types.SubmissionStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[id]
	if !exists {
		return types.SubmissionStatus{}, ErrNotFound
	}
	return s.statusLocked(id, e), nil
}

// Recent returns up to n statuses, newest first.
func (s *MemStore) Recent(ctx context.Context, n int) ([]types.SubmissionStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n < 1 {
		return nil, nil
	}

	out := make([]types.SubmissionStatus, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(out) < n; i-- {
		id := s.order[i]
		e, exists := s.entries[id]
		if !exists {
			// evicted; the order slice keeps a stale id
			continue
		}
		out = append(out, s.statusLocked(id, e))
	}
	return out, nil
}

// Count returns the number of tracked submissions.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// statusLocked builds the read shape. Must be called with s.mu held.
func (s *MemStore) statusLocked(id string, e *entry) types.SubmissionStatus {
	st := types.SubmissionStatus{
		ID:         id,
		Status:     e.status,
		ReceivedAt: e.receivedAt,
	}
	if e.status == types.StatusDelivered {
		at := e.deliveredAt
		st.DeliveredAt = &at
	}
	return st
}

// evictOldest drops the oldest tracked submission. Must be called with s.mu held.
func (s *MemStore) evictOldest() {
	for len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		if _, exists := s.entries[oldest]; exists {
			delete(s.entries, oldest)
			return
		}
	}
}
