package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// recordScript increments a key and sets its expiry only on creation.
var recordScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// RedisStore is a Store shared across instances.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store whose keys are namespaced by prefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

// Check implements Store.
func (s *RedisStore) Check(ctx context.Context, key string) (int, error) {
	n, err := s.client.Get(ctx, s.key(key)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("guard check: %w", err)
	}
	return n, nil
}

// Record implements Store.
func (s *RedisStore) Record(ctx context.Context, key string, ttl time.Duration) (int, error) {
	ms := ttl.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	n, err := recordScript.Run(ctx, s.client, []string{s.key(key)}, ms).Int()
	if err != nil {
		return 0, fmt.Errorf("guard record: %w", err)
	}
	return n, nil
}

// Evict implements Store.
func (s *RedisStore) Evict(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("guard evict: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
