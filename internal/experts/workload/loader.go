package workload

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"leadchat_backend/internal/experts/ranking"
	"leadchat_backend/platform/logger"
)

const fetchTimeout = 10 * time.Second

// Source computes a fresh snapshot, typically from the bookings table.
type Source interface {
	WorkloadCounts(ctx context.Context, now time.Time) (ranking.Snapshot, error)
}

// Loader serves snapshots from the cache and collapses concurrent misses
// into a single source query.
type Loader struct {
	cache  *Cache
	source Source
	group  singleflight.Group
	now    func() time.Time
	log    *logger.Logger
}

// NewLoader creates a loader. A nil cache always reads the source.
func NewLoader(cache *Cache, source Source, log *logger.Logger) *Loader {
	return &Loader{
		cache:  cache,
		source: source,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
}

// Load returns the current snapshot. Cache failures fall back to the source.
func (l *Loader) Load(ctx context.Context) (ranking.Snapshot, error) {
	if l.cache != nil {
		snapshot, ok, err := l.cache.Get(ctx)
		if err != nil {
			l.log.Warn("workload cache read failed", "error", err)
		}
		if ok {
			return snapshot, nil
		}
	}

	// The shared fetch must outlive any single caller's cancellation.
	v, err, _ := l.group.Do("workload", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		return l.fetch(fetchCtx)
	})
	if err != nil {
		return nil, err
	}
	return v.(ranking.Snapshot), nil
}

// Refresh recomputes the snapshot and rewrites the cache. It returns the
// number of experts with upcoming bookings.
func (l *Loader) Refresh(ctx context.Context) (int, error) {
	snapshot, err := l.fetch(ctx)
	if err != nil {
		return 0, err
	}
	return len(snapshot), nil
}

// Invalidate drops the cached snapshot so the next Load reads the source.
func (l *Loader) Invalidate(ctx context.Context) error {
	if l.cache == nil {
		return nil
	}
	return l.cache.Invalidate(ctx)
}

func (l *Loader) fetch(ctx context.Context) (ranking.Snapshot, error) {
	snapshot, err := l.source.WorkloadCounts(ctx, l.now())
	if err != nil {
		return nil, err
	}
	if l.cache != nil {
		if err := l.cache.Set(ctx, snapshot); err != nil {
			l.log.Warn("workload cache write failed", "error", err)
		}
	}
	return snapshot, nil
}
