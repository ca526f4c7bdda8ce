package utils

import (
	"sync"
	"time"
)

// TTLCache is a decay-windowed memoization map. Entries older than the TTL are
// treated as absent and evicted lazily on read, so a stale value is never
// returned. All methods are safe for concurrent use and never fail; a missing
// entry means "unknown, re-check upstream".
//
// The clock is injectable so tests can control entry age deterministically.
type TTLCache[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   func() time.Time
	entries map[K]ttlEntry[V]
}

type ttlEntry[V any] struct {
	value    V
	storedAt time.Time
}

// NewTTLCache builds a cache with the given entry lifetime.
// A nil clock defaults to time.Now.
func NewTTLCache[K comparable, V any](ttl time.Duration, clock func() time.Time) *TTLCache[K, V] {
	if clock == nil {
		clock = time.Now
	}
	return &TTLCache[K, V]{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[K]ttlEntry[V]),
	}
}

// Set records a value with the current timestamp, overwriting any prior entry.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ttlEntry[V]{value: value, storedAt: c.clock()}
}

// Get returns the stored value while its age is strictly under the TTL.
// An unknown or expired key reports ok=false; expired entries are evicted.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.clock().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Delete removes a single entry.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops all entries.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]ttlEntry[V])
}

// ClearExpired sweeps entries past the TTL. Get already evicts on read, so
// this is opportunistic housekeeping for callers that want to bound memory.
func (c *TTLCache[K, V]) ClearExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	for k, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
}

// Len reports the number of entries currently held, including any not yet
// swept expired ones.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
