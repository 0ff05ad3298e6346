package workload

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadchat_backend/internal/experts/ranking"
	"leadchat_backend/platform/logger"
)

const cacheKey = "experts:workload"

func newCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, cacheKey, ttl), mr
}

type countingSource struct {
	calls    atomic.Int32
	snapshot ranking.Snapshot
	err      error
	gate     chan struct{}
}

func (s *countingSource) WorkloadCounts(ctx context.Context, _ time.Time) (ranking.Snapshot, error) {
	s.calls.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.snapshot, s.err
}

func TestCacheRoundTrip(t *testing.T) {
	cache, mr := newCache(t, time.Minute)
	ctx := context.Background()
	busy, free := uuid.New(), uuid.New()

	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache should miss")

	require.NoError(t, cache.Set(ctx, ranking.Snapshot{busy: 3, free: 0}))

	got, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ranking.Snapshot{busy: 3, free: 0}, got)
	assert.Equal(t, time.Minute, mr.TTL(cacheKey))

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "expired snapshot should miss")
}

func TestCacheEmptySnapshotIsAHit(t *testing.T) {
	cache, _ := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, ranking.Snapshot{}))

	got, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestCacheSetReplacesPreviousSnapshot(t *testing.T) {
	cache, _ := newCache(t, time.Minute)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, cache.Set(ctx, ranking.Snapshot{a: 1}))
	require.NoError(t, cache.Set(ctx, ranking.Snapshot{b: 2}))

	got, _, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, ranking.Snapshot{b: 2}, got)
}

func TestLoaderCachesSourceResult(t *testing.T) {
	cache, _ := newCache(t, time.Minute)
	id := uuid.New()
	source := &countingSource{snapshot: ranking.Snapshot{id: 4}}
	loader := NewLoader(cache, source, logger.Nop())

	for i := 0; i < 3; i++ {
		got, err := loader.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, got[id])
	}
	assert.EqualValues(t, 1, source.calls.Load())
}

func TestLoaderCollapsesConcurrentMisses(t *testing.T) {
	source := &countingSource{snapshot: ranking.Snapshot{}, gate: make(chan struct{})}
	loader := NewLoader(nil, source, logger.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := loader.Load(context.Background())
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return source.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(source.gate)
	wg.Wait()

	assert.LessOrEqual(t, source.calls.Load(), int32(8))
	assert.GreaterOrEqual(t, source.calls.Load(), int32(1))
}

func TestLoaderRefreshRewritesCache(t *testing.T) {
	cache, _ := newCache(t, time.Minute)
	id := uuid.New()
	source := &countingSource{snapshot: ranking.Snapshot{id: 2}}
	loader := NewLoader(cache, source, logger.Nop())

	n, err := loader.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, ok, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got[id])
}

func TestLoaderPropagatesSourceError(t *testing.T) {
	source := &countingSource{err: errors.New("db down")}
	loader := NewLoader(nil, source, logger.Nop())

	_, err := loader.Load(context.Background())
	assert.Error(t, err)
}

func TestLoaderSharedFetchSurvivesCallerCancel(t *testing.T) {
	id := uuid.New()
	source := &countingSource{snapshot: ranking.Snapshot{id: 1}, gate: make(chan struct{})}
	loader := NewLoader(nil, source, logger.Nop())

	first, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 2)
	go func() {
		_, err := loader.Load(first)
		errs <- err
	}()
	require.Eventually(t, func() bool { return source.calls.Load() == 1 }, time.Second, time.Millisecond)

	go func() {
		_, err := loader.Load(context.Background())
		errs <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)
	close(source.gate)

	for i := 0; i < 2; i++ {
		assert.NoError(t, <-errs)
	}
}

func TestLoaderInvalidateDropsCache(t *testing.T) {
	cache, mr := newCache(t, time.Minute)
	id := uuid.New()
	source := &countingSource{snapshot: ranking.Snapshot{id: 2}}
	loader := NewLoader(cache, source, logger.Nop())
	ctx := context.Background()

	_, err := loader.Load(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(cacheKey))

	require.NoError(t, loader.Invalidate(ctx))
	assert.False(t, mr.Exists(cacheKey))

	_, err = loader.Load(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, source.calls.Load())

	assert.NoError(t, NewLoader(nil, source, logger.Nop()).Invalidate(ctx), "no cache is a no-op")
}
