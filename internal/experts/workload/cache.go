// Package workload caches per-expert booking counts so ranking does not hit
// the database on every chat message.
package workload

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"leadchat_backend/internal/experts/ranking"
)

// loadedField marks a stored snapshot so an empty roster load is still a hit.
const loadedField = "_loaded"

// Cache stores a workload snapshot as a single Redis hash.
type Cache struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

func NewCache(client redis.UniversalClient, key string, ttl time.Duration) *Cache {
	return &Cache{client: client, key: key, ttl: ttl}
}

// Get returns the cached snapshot. The bool is false on a miss.
func (c *Cache) Get(ctx context.Context) (ranking.Snapshot, bool, error) {
	fields, err := c.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, false, fmt.Errorf("read workload cache: %w", err)
	}
	if _, ok := fields[loadedField]; !ok {
		return nil, false, nil
	}

	snapshot := make(ranking.Snapshot, len(fields)-1)
	for field, value := range fields {
		if field == loadedField {
			continue
		}
		id, err := uuid.Parse(field)
		if err != nil {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		snapshot[id] = n
	}
	return snapshot, true, nil
}

// Set replaces the cached snapshot atomically and resets its TTL.
func (c *Cache) Set(ctx context.Context, snapshot ranking.Snapshot) error {
	values := make([]any, 0, 2+2*len(snapshot))
	values = append(values, loadedField, "1")
	for id, n := range snapshot {
		values = append(values, id.String(), n)
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.key)
	pipe.HSet(ctx, c.key, values...)
	if c.ttl > 0 {
		pipe.Expire(ctx, c.key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write workload cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
