// Package cache implements the shared feed state store: a keyed, in-memory,
// last-write-wins map holding the most recent decoded record per key.
//
// One ingestion goroutine writes and N dispatcher ticks read concurrently, so
// access goes through an RWMutex. Entries expire a fixed TTL after their last
// write; without that bound the store would grow for the life of the process,
// since upstream subscriptions are additive and never revoked.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Entry is one cached record and the time it was observed.
type Entry[V any] struct {
	Value      V
	ObservedAt time.Time
}

// Cache is a concurrency-safe last-write-wins store.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]Entry[V]
	ttl     time.Duration
	clock   clockwork.Clock
}

// New creates a cache whose entries expire ttl after their last write.
func New[K comparable, V any](ttl time.Duration, clock clockwork.Clock) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]Entry[V]),
		ttl:     ttl,
		clock:   clock,
	}
}

// Put overwrites the entry for key unconditionally, stamping it with the
// current time. The upstream is assumed to deliver in causal order per key,
// so no sequence check is performed.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry[V]{Value: value, ObservedAt: c.clock.Now()}
}

// Get returns the current entry for key, or false when absent or expired.
func (c *Cache[K, V]) Get(key K) (Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.expired(entry) {
		var zero Entry[V]
		return zero, false
	}
	return entry, true
}

// Range calls fn for every live entry until fn returns false. It iterates
// over a snapshot taken under the read lock, so fn may call back into the
// cache freely.
func (c *Cache[K, V]) Range(fn func(key K, entry Entry[V]) bool) {
	c.mu.RLock()
	snapshot := make(map[K]Entry[V], len(c.entries))
	for key, entry := range c.entries {
		if !c.expired(entry) {
			snapshot[key] = entry
		}
	}
	c.mu.RUnlock()

	for key, entry := range snapshot {
		if !fn(key, entry) {
			return
		}
	}
}

// Len returns the number of entries, including any not yet evicted.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// EvictExpired removes expired entries and returns how many were dropped.
func (c *Cache[K, V]) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, entry := range c.entries {
		if c.expired(entry) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// StartEvictionTimer runs EvictExpired on the given interval until the
// returned stop function is called.
func (c *Cache[K, V]) StartEvictionTimer(interval time.Duration) func() {
	done := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := c.clock.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				c.EvictExpired()
			case <-done:
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}

func (c *Cache[K, V]) expired(entry Entry[V]) bool {
	if c.ttl <= 0 {
		return false
	}
	return c.clock.Now().After(entry.ObservedAt.Add(c.ttl))
}
