package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists per-key locks and completion marks.
type Store interface {
	Lock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	Done(ctx context.Context, key string) (bool, error)
	MarkDone(ctx context.Context, key string, ttl time.Duration) error
	ReleaseLock(ctx context.Context, key string) error
}

// RedisStore implements Store on Redis. Locks and marks are plain keys with
// TTLs; Redis expiry does the cleanup.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisStore wraps a Redis client.
func NewRedisStore(client *redis.Client, log *slog.Logger) Store {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{
		client: client,
		log:    log,
	}
}

func (s *RedisStore) Lock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, lockKey(key), 1, lockTTL).Result()
	if err != nil {
		s.log.Error("failed to acquire idempotency lock", slog.String("key", key), slog.Any("error", err))
		return false, err
	}

	return acquired, nil
}

func (s *RedisStore) Done(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, doneKey(key)).Result()
	if err != nil {
		s.log.Error("failed to check idempotency mark", slog.String("key", key), slog.Any("error", err))
		return false, err
	}

	return n > 0, nil
}

func (s *RedisStore) MarkDone(ctx context.Context, key string, ttl time.Duration) error {
	if err := s.client.Set(ctx, doneKey(key), 1, ttl).Err(); err != nil {
		s.log.Error("failed to store idempotency mark", slog.String("key", key), slog.Any("error", err))
		return err
	}

	return nil
}

func (s *RedisStore) ReleaseLock(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, lockKey(key)).Err(); err != nil {
		s.log.Error("failed to release idempotency lock", slog.String("key", key), slog.Any("error", err))
		return err
	}

	return nil
}

func doneKey(key string) string {
	return fmt.Sprintf("idempotency:%s", key)
}

func lockKey(key string) string {
	return fmt.Sprintf("idempotency:%s:lock", key)
}
