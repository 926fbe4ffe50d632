package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const keyPrefix = "user_activity:"

// RedisStore keeps activity timestamps in Redis with a TTL, so they are
// shared across instances and expire without housekeeping.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Touch(ctx context.Context, consumerID uuid.UUID, at time.Time) error {
	key := keyPrefix + consumerID.String()
	if err := s.client.Set(ctx, key, at.UTC().Format(time.RFC3339Nano), s.ttl).Err(); err != nil {
		return fmt.Errorf("set activity: %w", err)
	}
	return nil
}

func (s *RedisStore) Last(ctx context.Context, consumerID uuid.UUID) (time.Time, bool, error) {
	key := keyPrefix + consumerID.String()
	raw, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get activity: %w", err)
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse activity timestamp: %w", err)
	}
	return at, true, nil
}
