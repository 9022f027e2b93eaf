package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "treadline:cache:"
	redisAuthSetKey  = "treadline:cache-auth-keys"
	redisPingTimeout = 5 * time.Second
)

var _ Store = (*RedisStore)(nil)

// RedisStore backs the shared cache with Redis so warmed entries survive
// process restarts and are shared across client instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) key(key string) string {
	return redisKeyPrefix + key
}

func (s *RedisStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cache entry %q: %w", key, err)
	}

	if err := go_json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache entry %q: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value any, opts Options) error {
	data, err := go_json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry %q: %w", key, err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(key), data, opts.TTL)
	if opts.AuthScoped {
		pipe.SAdd(ctx, redisAuthSetKey, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set cache entry %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context, key string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(key))
	pipe.SRem(ctx, redisAuthSetKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate cache entry %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) InvalidateAuthScoped(ctx context.Context) error {
	keys, err := s.client.SMembers(ctx, redisAuthSetKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list auth-scoped cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = s.key(key)
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, full...)
	pipe.Del(ctx, redisAuthSetKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to purge auth-scoped cache entries: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
