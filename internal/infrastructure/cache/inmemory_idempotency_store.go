package cache

import (
	"context"
	"sync"
	"time"

	"github.com/lexdesk/backend/internal/domain/shared"
)

// sweepEvery is how many writes pass between purges of expired keys
const sweepEvery = 256

// InMemoryIdempotencyStore is the single-instance stand-in for the Redis
// store. Expired keys are purged while writing, so no goroutine runs.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	writes  int
	now     func() time.Time
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{expires: make(map[string]time.Time), now: time.Now}
}

// MarkProcessed returns true if key was not held already
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if exp, ok := s.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	if s.writes++; s.writes%sweepEvery == 0 {
		s.sweep(now)
	}
	return true, nil
}

func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expires[key]
	return ok && s.now().Before(exp), nil
}

func (s *InMemoryIdempotencyStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expires, key)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryIdempotencyStore) Close() error { return nil }

func (s *InMemoryIdempotencyStore) sweep(now time.Time) {
	for k, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, k)
		}
	}
}

func (s *InMemoryIdempotencyStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
