package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	val V
	exp time.Time
}

// Cache is a TTL map safe for concurrent use. Expired entries are dropped
// lazily by Get and eagerly by Prune.
type Cache[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]entry[V]
	ttl  time.Duration
	now  func() time.Time
}

func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{data: make(map[K]entry[V]), ttl: ttl, now: time.Now}
}

func (c *Cache[K, V]) Get(k K) (V, bool) {
	var zero V
	c.mu.RLock()
	e, ok := c.data[k]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if c.now().After(e.exp) {
		c.mu.Lock()
		if cur, ok := c.data[k]; ok && c.now().After(cur.exp) {
			delete(c.data, k)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.val, true
}

// Put stores v for the cache's TTL.
func (c *Cache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[k] = entry[V]{val: v, exp: c.now().Add(c.ttl)}
}

// Prune removes expired entries and reports how many were removed.
func (c *Cache[K, V]) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, e := range c.data {
		if now.After(e.exp) {
			delete(c.data, k)
			n++
		}
	}
	return n
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
