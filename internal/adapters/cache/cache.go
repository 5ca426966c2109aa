package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a concurrency-safe map whose entries expire after ttl.
// A zero ttl keeps entries forever.
type Cache[K comparable, V any] struct {
	mu  sync.RWMutex
	m   map[K]entry[V]
	ttl time.Duration
	now func() time.Time
}

func NewCache[K comparable, V any](size int, ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		m:   make(map[K]entry[V], size),
		ttl: ttl,
		now: time.Now,
	}
}

func (c *Cache[K, V]) Get(_ context.Context, k K) (V, bool) {
	c.mu.RLock()
	e, ok := c.m[k]
	c.mu.RUnlock()
	if !ok || c.expired(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// GetStale returns the value even when it has expired.
func (c *Cache[K, V]) GetStale(_ context.Context, k K) (V, bool) {
	c.mu.RLock()
	e, ok := c.m[k]
	c.mu.RUnlock()
	return e.value, ok
}

func (c *Cache[K, V]) Set(_ context.Context, k K, v V) {
	c.mu.Lock()
	c.m[k] = c.wrap(v)
	c.mu.Unlock()
}

// GetBatch returns the fresh entries among keys.
func (c *Cache[K, V]) GetBatch(_ context.Context, keys []K) map[K]V {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make(map[K]V, len(keys))
	for _, k := range keys {
		if e, ok := c.m[k]; ok && !c.expired(e) {
			res[k] = e.value
		}
	}
	return res
}

// GetBatchStale returns every cached entry among keys, expired or not.
func (c *Cache[K, V]) GetBatchStale(_ context.Context, keys []K) map[K]V {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make(map[K]V, len(keys))
	for _, k := range keys {
		if e, ok := c.m[k]; ok {
			res[k] = e.value
		}
	}
	return res
}

func (c *Cache[K, V]) SetBatch(_ context.Context, items map[K]V) {
	c.mu.Lock()
	for k, v := range items {
		c.m[k] = c.wrap(v)
	}
	c.mu.Unlock()
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *Cache[K, V]) wrap(v V) entry[V] {
	e := entry[V]{value: v}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	return e
}

func (c *Cache[K, V]) expired(e entry[V]) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}
