package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by a shared Redis instance, for
// deployments that already run Redis and want the cache shared across
// hosts. Keys are namespaced as "{namespace}:{key}".
//
// Entries carry no Redis expiry: freshness is reader-supplied, the same
// as FileStore, and expired entries are deleted on read.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{client: client, namespace: namespace}
}

// Read implements Store.
func (s *RedisStore) Read(ctx context.Context, key string, ttl time.Duration) (*Entry, error) {
	raw, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		_ = s.client.Del(ctx, s.redisKey(key)).Err()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.Expired(ttl) {
		_ = s.client.Del(ctx, s.redisKey(key)).Err()
		return nil, ErrCacheMiss
	}

	return &entry, nil
}

// Write implements Store.
func (s *RedisStore) Write(ctx context.Context, key string, data json.RawMessage) error {
	raw, err := json.Marshal(newEntry(data))
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := s.client.Set(ctx, s.redisKey(key), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	pattern := s.namespace + ":*"
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis del: %w", err)
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

func (s *RedisStore) redisKey(key string) string {
	return s.namespace + ":" + key
}
