package guard

import (
	"context"
	"time"
)

// Quota admits at most limit events per key within a fixed window.
type Quota struct {
	store  Store
	limit  int
	window time.Duration
	prefix string
}

// NewQuota creates a quota. A limit below 1 disables enforcement.
func NewQuota(store Store, prefix string, limit int, window time.Duration) *Quota {
	return &Quota{store: store, limit: limit, window: window, prefix: prefix}
}

// Allow records one event for key and reports whether it fits the quota
// along with the number of events left in the window.
func (q *Quota) Allow(ctx context.Context, key string) (bool, int, error) {
	if q == nil || q.limit < 1 {
		return true, 0, nil
	}
	n, err := q.store.Record(ctx, q.prefix+key, q.window)
	if err != nil {
		return false, 0, err
	}
	remaining := q.limit - n
	if remaining < 0 {
		remaining = 0
	}
	return n <= q.limit, remaining, nil
}

// Reset clears the window for key.
func (q *Quota) Reset(ctx context.Context, key string) error {
	return q.store.Evict(ctx, q.prefix+key)
}

// Revocations is a deny-list of token identifiers.
type Revocations struct {
	store  Store
	prefix string
}

// NewRevocations creates a deny-list backed by store.
func NewRevocations(store Store, prefix string) *Revocations {
	return &Revocations{store: store, prefix: prefix}
}

// Revoke denies id until ttl elapses; callers pass the token's remaining lifetime.
func (r *Revocations) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	_, err := r.store.Record(ctx, r.prefix+id, ttl)
	return err
}

// IsRevoked reports whether id is currently denied.
func (r *Revocations) IsRevoked(ctx context.Context, id string) (bool, error) {
	n, err := r.store.Check(ctx, r.prefix+id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Restore lifts a revocation.
func (r *Revocations) Restore(ctx context.Context, id string) error {
	return r.store.Evict(ctx, r.prefix+id)
}
