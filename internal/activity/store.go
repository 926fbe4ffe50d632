// Package activity tracks when a consumer was last seen. Entries expire so
// "active" means "seen within the TTL window".
package activity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	// Touch records the consumer as active at the given time.
	Touch(ctx context.Context, consumerID uuid.UUID, at time.Time) error
	// Last returns the most recent activity timestamp, if still within the
	// expiry window.
	Last(ctx context.Context, consumerID uuid.UUID) (time.Time, bool, error)
}

// MemoryStore is the in-process fallback used when no Redis address is
// configured, and in tests.
type MemoryStore struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[uuid.UUID]time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[uuid.UUID]time.Time)}
}

func (s *MemoryStore) Touch(ctx context.Context, consumerID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[consumerID] = at
	return nil
}

func (s *MemoryStore) Last(ctx context.Context, consumerID uuid.UUID) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.entries[consumerID]
	if !ok {
		return time.Time{}, false, nil
	}
	if time.Since(at) > s.ttl {
		delete(s.entries, consumerID)
		return time.Time{}, false, nil
	}
	return at, true, nil
}
