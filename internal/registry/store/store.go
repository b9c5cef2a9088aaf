// Package store caches raw registry replies keyed by identifier.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"innbot/internal/registry/models"
)

// ErrNotFound is returned when a requested reply is not cached or has expired.
var ErrNotFound = errors.New("not found")

// Cache backends, used as metric labels.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// payloadOf returns the bytes to cache for a reply: the original body when
// available, otherwise its re-encoding.
func payloadOf(result *models.LookupResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("registry reply is required")
	}
	if raw := result.Raw(); len(raw) > 0 {
		return raw, nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode registry reply: %w", err)
	}
	return payload, nil
}
