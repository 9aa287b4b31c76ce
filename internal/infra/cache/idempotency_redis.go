package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisIdempotencyStore struct {
	client *redis.Client
}

func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

// reserveAttempts bounds retries when the key expires between SETNX and GET.
const reserveAttempts = 3

// Reserve claims key for a new booking. When the key is already known it
// returns the stored order id, or "" while the first booking is in flight.
func (s *RedisIdempotencyStore) Reserve(
	ctx context.Context,
	key string,
	ttl time.Duration,
) (string, bool, error) {

	for attempt := 0; attempt < reserveAttempts; attempt++ {
		ok, err := s.client.SetNX(ctx, keyPrefix+key, pending, ttl).Result()
		if err != nil {
			return "", false, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if ok {
			return "", true, nil
		}

		val, err := s.client.Get(ctx, keyPrefix+key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("read idempotency key: %w", err)
		}
		if val == pending {
			return "", false, nil
		}
		return val, false, nil
	}

	return "", false, fmt.Errorf("reserve idempotency key %q: key kept expiring", key)
}

func (s *RedisIdempotencyStore) Complete(
	ctx context.Context,
	key string,
	orderID string,
	ttl time.Duration,
) error {
	if err := s.client.Set(ctx, keyPrefix+key, orderID, ttl).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
