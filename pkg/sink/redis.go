package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/lookup-get/pkg/lookup"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultTTL is how long an exported batch stays in Redis.
const DefaultTTL = 24 * time.Hour

// RedisSink exports batches as Redis hashes mapping identifier to payload.
type RedisSink struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisSink creates a Redis export sink. A zero ttl means DefaultTTL and an
// empty prefix means DefaultPrefix.
func NewRedisSink(redisClient *redis.Client, prefix string, ttl time.Duration, logger zerolog.Logger) *RedisSink {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisSink{
		redis:  redisClient,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *RedisSink) key(batchID string) string {
	return BatchKey{Prefix: s.prefix, BatchID: batchID}.String()
}

// Write implements Sink. HSET and EXPIRE are sent in one pipeline.
func (s *RedisSink) Write(ctx context.Context, batchID string, results []lookup.Result) error {
	if len(results) == 0 {
		return nil
	}

	key := s.key(batchID)
	values := make([]interface{}, 0, 2*len(results))
	for _, r := range results {
		values = append(values, r.ID, r.Payload())
	}

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values...)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		sinkErrors.WithLabelValues("redis").Inc()
		return fmt.Errorf("redis export: %w", err)
	}

	sinkWrites.WithLabelValues("redis").Add(float64(len(results)))
	s.logger.Debug().
		Str("batch_id", batchID).
		Str("key", key).
		Int("results", len(results)).
		Dur("ttl", s.ttl).
		Msg("Batch exported to Redis")

	return nil
}

// Get returns the exported payload for one identifier.
// Returns ErrNotFound if the batch or identifier doesn't exist.
func (s *RedisSink) Get(ctx context.Context, batchID, id string) (string, error) {
	payload, err := s.redis.HGet(ctx, s.key(batchID), id).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrNotFound
		}
		sinkErrors.WithLabelValues("redis").Inc()
		return "", fmt.Errorf("redis hget: %w", err)
	}
	return payload, nil
}

// Delete removes an exported batch.
func (s *RedisSink) Delete(ctx context.Context, batchID string) error {
	if err := s.redis.Del(ctx, s.key(batchID)).Err(); err != nil {
		sinkErrors.WithLabelValues("redis").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
