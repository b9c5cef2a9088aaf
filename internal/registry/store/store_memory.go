package store

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"innbot/internal/registry/metrics"
	"innbot/internal/registry/models"
)

// MemoryCache keeps registry replies in process memory with TTL expiration.
type MemoryCache struct {
	cache   *gocache.Cache
	metrics *metrics.Metrics
}

// NewMemoryCache creates an in-memory cache whose entries expire after ttl.
// Expired entries are swept every 2*ttl. metrics may be nil.
func NewMemoryCache(ttl time.Duration, m *metrics.Metrics) *MemoryCache {
	return &MemoryCache{
		cache:   gocache.New(ttl, 2*ttl),
		metrics: m,
	}
}

// FindParty returns the cached reply for an identifier, or ErrNotFound.
func (c *MemoryCache) FindParty(_ context.Context, identifier string) (*models.LookupResult, error) {
	start := time.Now()
	value, found := c.cache.Get(identifier)
	if !found {
		recordMiss(c.metrics, BackendMemory, start)
		return nil, ErrNotFound
	}

	payload, ok := value.([]byte)
	if !ok {
		c.cache.Delete(identifier)
		recordMiss(c.metrics, BackendMemory, start)
		return nil, ErrNotFound
	}

	result, err := models.DecodeLookupResult(payload)
	if err != nil {
		return nil, fmt.Errorf("decode party cache: %w", err)
	}
	recordHit(c.metrics, BackendMemory, start)
	return result, nil
}

// SaveParty stores a reply under the identifier, replacing any previous entry.
func (c *MemoryCache) SaveParty(_ context.Context, identifier string, result *models.LookupResult) error {
	if identifier == "" {
		return fmt.Errorf("identifier is required")
	}
	payload, err := payloadOf(result)
	if err != nil {
		return err
	}
	c.cache.SetDefault(identifier, payload)
	return nil
}

// Len returns the number of cached entries, including expired ones not yet swept.
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}

// Flush removes every entry.
func (c *MemoryCache) Flush() {
	c.cache.Flush()
}

// recordHit emits cache hit metrics for the given backend.
func recordHit(m *metrics.Metrics, backend string, start time.Time) {
	if m == nil {
		return
	}
	m.RecordCacheHit(backend)
	m.ObserveLookupDuration(backend, time.Since(start).Seconds())
}

// recordMiss emits cache miss metrics for the given backend.
func recordMiss(m *metrics.Metrics, backend string, start time.Time) {
	if m == nil {
		return
	}
	m.RecordCacheMiss(backend)
	m.ObserveLookupDuration(backend, time.Since(start).Seconds())
}
