package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"innbot/internal/registry/metrics"
	"innbot/internal/registry/models"
)

const redisPartyKeyPrefix = "registry:party:"

// RedisCache persists registry replies in Redis with TTL-based eviction.
type RedisCache struct {
	client   redis.UniversalClient
	cacheTTL time.Duration
	metrics  *metrics.Metrics
}

// NewRedisCache constructs a Redis-backed registry cache.
// Usage: pass a configured Redis client; metrics may be nil.
func NewRedisCache(client redis.UniversalClient, cacheTTL time.Duration, metrics *metrics.Metrics) *RedisCache {
	return &RedisCache{
		client:   client,
		cacheTTL: cacheTTL,
		metrics:  metrics,
	}
}

// FindParty loads a cached reply by identifier.
//
// Side effects: performs a Redis GET and records cache hit/miss metrics.
//
// Errors: returns ErrNotFound on cache miss; wraps Redis or JSON decode errors.
func (c *RedisCache) FindParty(ctx context.Context, identifier string) (*models.LookupResult, error) {
	start := time.Now()
	data, err := c.client.Get(ctx, partyKey(identifier)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			recordMiss(c.metrics, BackendRedis, start)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find party cache: %w", err)
	}

	result, err := models.DecodeLookupResult(data)
	if err != nil {
		return nil, fmt.Errorf("decode party cache: %w", err)
	}
	recordHit(c.metrics, BackendRedis, start)
	return result, nil
}

// SaveParty writes a reply to Redis with TTL eviction.
//
// Side effects: performs a Redis SET; overwrites any existing entry.
//
// Errors: returns an error if the identifier is empty, the reply is nil or
// cannot be encoded, or the write fails.
func (c *RedisCache) SaveParty(ctx context.Context, identifier string, result *models.LookupResult) error {
	if identifier == "" {
		return fmt.Errorf("identifier is required")
	}
	payload, err := payloadOf(result)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, partyKey(identifier), payload, c.cacheTTL).Err(); err != nil {
		return fmt.Errorf("save party cache: %w", err)
	}
	return nil
}

func partyKey(identifier string) string {
	return redisPartyKeyPrefix + identifier
}
