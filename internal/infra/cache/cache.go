// Package cache provides a simple bounded in-memory TTL cache.
// In production, this could be backed by Redis.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
	storedAt  time.Time
}

// InMemory is a thread-safe in-memory cache with TTL and a bound on the
// number of entries. Chart payloads are keyed by the full parameter set,
// so an unbounded map would grow with every granularity/range combination
// a user clicks through.
type InMemory[T any] struct {
	mu         sync.RWMutex
	items      map[string]entry[T]
	ttl        time.Duration
	maxEntries int
}

// New creates a new in-memory cache with the given TTL, holding at most
// maxEntries values (unbounded if maxEntries <= 0).
func New[T any](ttl time.Duration, maxEntries int) *InMemory[T] {
	c := &InMemory[T]{
		items:      make(map[string]entry[T]),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
	// Background cleanup goroutine
	go c.cleanup()
	return c
}

// Get retrieves a value from the cache. Returns false if not found or expired.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores a value in the cache with the configured TTL, evicting the
// oldest entry when the cache is full.
func (c *InMemory[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		if _, exists := c.items[key]; !exists {
			c.evictOneLocked(now)
		}
	}
	c.items[key] = entry[T]{
		value:     value,
		expiresAt: now.Add(c.ttl),
		storedAt:  now,
	}
}

// evictOneLocked drops an expired entry if one exists, otherwise the
// oldest one. Caller must hold the write lock.
func (c *InMemory[T]) evictOneLocked(now time.Time) {
	var (
		oldestKey string
		oldestAt  time.Time
		first     = true
	)
	for k, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, k)
			return
		}
		if first || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.storedAt
			first = false
		}
	}
	if !first {
		delete(c.items, oldestKey)
	}
}

// Delete removes a value from the cache.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Len returns the number of entries currently held, expired included.
func (c *InMemory[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// cleanup periodically removes expired entries.
func (c *InMemory[T]) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for k, v := range c.items {
			if now.After(v.expiresAt) {
				delete(c.items, k)
			}
		}
		c.mu.Unlock()
	}
}
