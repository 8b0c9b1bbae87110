// Package cache provides a small generic key-value store with per-entry TTL,
// lazy expiry, and bounded size. Both the role cache and the admin-status
// cache are instances of it.
//
// Expiry is checked only when an entry is read; there is no background
// sweeper. When an insert pushes the cache over its capacity, the
// oldest-inserted entries are evicted first (insertion order, not access
// order). Re-setting an existing key counts as a fresh insertion.
//
// The clock is injected so TTL behavior is deterministic under test.
package cache

import (
	"sync"
	"time"
)

// DefaultCapacity is the soft cap applied when no capacity is configured.
const DefaultCapacity = 1000

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a mutex-guarded TTL cache. It is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]entry[V]
	order    []K // insertion order; each live key appears exactly once
	capacity int
	now      func() time.Time
}

// New returns a cache bounded to capacity entries, reading time from now.
// A capacity <= 0 falls back to DefaultCapacity; a nil now falls back to
// time.Now.
func New[K comparable, V any](capacity int, now func() time.Time) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if now == nil {
		now = time.Now
	}
	return &Cache[K, V]{
		entries:  make(map[K]entry[V]),
		capacity: capacity,
		now:      now,
	}
}

// Get returns the value stored under key. An entry whose deadline has been
// reached (now >= expiresAt) is treated as absent and purged.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		c.remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl. A non-positive ttl is a no-op: the
// entry would already be expired, so it is never stored. Setting an existing
// key overwrites its value and moves it to the back of the eviction order.
func (c *Cache[K, V]) Set(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.removeFromOrder(key)
	}
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
	c.order = append(c.order, key)

	for len(c.entries) > c.capacity {
		oldest := c.order[0]
		c.remove(oldest)
	}
}

// Clear removes every entry matching pred and returns the number removed.
// A nil pred clears the whole cache.
func (c *Cache[K, V]) Clear(pred func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pred == nil {
		n := len(c.entries)
		c.entries = make(map[K]entry[V])
		c.order = c.order[:0]
		return n
	}

	removed := 0
	kept := c.order[:0]
	for _, k := range c.order {
		if pred(k) {
			delete(c.entries, k)
			removed++
			continue
		}
		kept = append(kept, k)
	}
	c.order = kept
	return removed
}

// Len returns the number of stored entries, including ones that have expired
// but have not been read (and purged) yet.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remove deletes key from both the map and the order slice.
// Caller must hold c.mu.
func (c *Cache[K, V]) remove(key K) {
	delete(c.entries, key)
	c.removeFromOrder(key)
}

// removeFromOrder drops key from the insertion-order slice.
// Caller must hold c.mu.
func (c *Cache[K, V]) removeFromOrder(key K) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
