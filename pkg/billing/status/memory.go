package status

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/billingkit/pkg/billing"
)

// MemoryStore is an in-process Store with a TTL staleness bound. It is the
// default store for on-device deployments of the engine.
type MemoryStore struct {
	mu       sync.Mutex
	record   *billing.SubscriptionRecord
	storedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a MemoryStore. Panics on a non-positive ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		panic("status: memory store TTL must be positive")
	}
	return &MemoryStore{
		ttl: ttl,
		now: time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context) (*billing.SubscriptionRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.record == nil || s.now().Sub(s.storedAt) >= s.ttl {
		return nil, false, nil
	}

	rec := *s.record
	return &rec, true, nil
}

func (s *MemoryStore) Set(_ context.Context, record *billing.SubscriptionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record == nil {
		s.record = nil
		return nil
	}

	rec := *record
	s.record = &rec
	s.storedAt = s.now()
	return nil
}

func (s *MemoryStore) Invalidate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = nil
	return nil
}
