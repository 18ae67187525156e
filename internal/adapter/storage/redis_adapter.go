package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const summaryKeyPrefix = "summary:"

// RedisAdapter implements port.SummaryCache. Summaries are advisory, so the
// cache uses plain GET/SET with a short TTL plus DEL on mutation; correctness
// never depends on it.
type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	return &RedisAdapter{client: client, ttl: ttl}
}

func (r *RedisAdapter) GetSummary(ctx context.Context, eventID string) ([]byte, bool, error) {
	payload, err := r.client.Get(ctx, summaryKeyPrefix+eventID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (r *RedisAdapter) SetSummary(ctx context.Context, eventID string, payload []byte) error {
	return r.client.Set(ctx, summaryKeyPrefix+eventID, payload, r.ttl).Err()
}

func (r *RedisAdapter) InvalidateSummary(ctx context.Context, eventID string) error {
	return r.client.Del(ctx, summaryKeyPrefix+eventID).Err()
}
