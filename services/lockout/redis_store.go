package lockout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrStoreUnavailable = errors.New("counter store unavailable")

// RedisStore keeps counters as INCR keys under namespace, expiring with the
// window that the first increment opened.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) key(key string) string {
	return s.namespace + ":" + key
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	k := s.key(key)

	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, k, window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	return int(count), nil
}

func (s *RedisStore) Count(ctx context.Context, key string) (int, error) {
	count, err := s.client.Get(ctx, s.key(key)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
