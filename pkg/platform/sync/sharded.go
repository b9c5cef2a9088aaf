// Package sync provides keyed locking for work that must not run twice
// concurrently for the same key.
package sync

import (
	"context"
	"hash/maphash"
)

const shardCount = 32

// ShardedMutex serializes callers per key. Keys are spread over a fixed set of
// shards, so unrelated keys may occasionally share a shard.
type ShardedMutex struct {
	seed   maphash.Seed
	shards [shardCount]chan struct{}
}

// NewShardedMutex creates a ShardedMutex with all shards unlocked.
func NewShardedMutex() *ShardedMutex {
	m := &ShardedMutex{seed: maphash.MakeSeed()}
	for i := range m.shards {
		m.shards[i] = make(chan struct{}, 1)
	}
	return m
}

// Lock blocks until the shard for key is acquired or ctx is done. The returned
// function releases the shard and must be called exactly once on success.
func (m *ShardedMutex) Lock(ctx context.Context, key string) (func(), error) {
	shard := m.shards[m.shardFor(key)]
	select {
	case shard <- struct{}{}:
		return func() { <-shard }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *ShardedMutex) shardFor(key string) int {
	if key == "" {
		return 0
	}
	return int(maphash.String(m.seed, key) % shardCount)
}
