package routing

import (
	"hash/fnv"
	"sync"

	"github.com/luminardb/luminar-go/model"
)

const shardCount = 16

// shardedCache maps table names to endpoints with per-shard locking, so
// lookups of unrelated tables never serialize on one mutex.
type shardedCache struct {
	shards [shardCount]cacheShard
}

type cacheShard struct {
	mu      sync.RWMutex
	entries map[string]model.Endpoint
}

func newShardedCache() *shardedCache {
	c := &shardedCache{}
	for i := range c.shards {
		c.shards[i].entries = make(map[string]model.Endpoint)
	}
	return c
}

func (c *shardedCache) shardFor(table string) *cacheShard {
	h := fnv.New32a()
	h.Write([]byte(table))
	return &c.shards[h.Sum32()%shardCount]
}

// Get returns the cached endpoint for a table, if any.
func (c *shardedCache) Get(table string) (model.Endpoint, bool) {
	shard := c.shardFor(table)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	ep, exists := shard.entries[table]
	return ep, exists
}

// Put inserts or replaces the endpoint for a table. Inserts are
// idempotent per key, so concurrent duplicate resolutions converge.
func (c *shardedCache) Put(table string, endpoint model.Endpoint) {
	shard := c.shardFor(table)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	shard.entries[table] = endpoint
}

// Delete removes the entry for a table; no-op when absent.
func (c *shardedCache) Delete(table string) {
	shard := c.shardFor(table)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	delete(shard.entries, table)
}

// Len returns the total number of cached routes.
func (c *shardedCache) Len() int {
	n := 0
	for i := range c.shards {
		c.shards[i].mu.RLock()
		n += len(c.shards[i].entries)
		c.shards[i].mu.RUnlock()
	}
	return n
}
