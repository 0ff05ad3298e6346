// Package guard provides counter-backed admission state (rate quotas and
// token revocations) behind an injectable Store, so no component keeps
// process-wide mutable maps.
package guard

import (
	"context"
	"sync"
	"time"
)

// Store is a keyed counter with per-key expiry.
type Store interface {
	// Check returns the current count for key, 0 when absent or expired.
	Check(ctx context.Context, key string) (int, error)
	// Record increments key and returns the new count. The expiry is set
	// only when the key is created, giving fixed-window semantics.
	Record(ctx context.Context, key string, ttl time.Duration) (int, error)
	// Evict deletes key.
	Evict(ctx context.Context, key string) error
}

type memoryEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryStore is a single-process Store. Suitable for tests and
// single-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an empty store using now as its clock.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// Check implements Store.
func (s *MemoryStore) Check(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(key)
	if !ok {
		return 0, nil
	}
	return e.count, nil
}

// Record implements Store.
func (s *MemoryStore) Record(_ context.Context, key string, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(key)
	if !ok {
		e = memoryEntry{expiresAt: s.now().Add(ttl)}
	}
	e.count++
	s.entries[key] = e
	return e.count, nil
}

// Evict implements Store.
func (s *MemoryStore) Evict(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Sweep removes expired keys and reports how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			dropped++
		}
	}
	return dropped
}

// live returns the entry for key if it has not expired. Caller holds mu.
func (s *MemoryStore) live(key string) (memoryEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

var _ Store = (*MemoryStore)(nil)
