package services

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyPending = "pending"

// IdempotencyStore remembers the outcome of public submissions per client key.
type IdempotencyStore interface {
	// Reserve claims key. When the key is already taken it returns the stored
	// value ("pending" while the first request is still running).
	Reserve(ctx context.Context, key string, ttl time.Duration) (existing string, reserved bool, err error)
	Complete(ctx context.Context, key, value string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type RedisIdempotency struct {
	client *redis.Client
	prefix string
}

func NewRedisIdempotency(client *redis.Client) *RedisIdempotency {
	return &RedisIdempotency{client: client, prefix: "idem:submit:"}
}

func (s *RedisIdempotency) Reserve(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+key, idempotencyPending, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between the two calls; let the caller retry as a fresh request.
		return idempotencyPending, false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, false, nil
}

func (s *RedisIdempotency) Complete(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *RedisIdempotency) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
