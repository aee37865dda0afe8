// Package cache provides in-memory caches keyed by string with hit and miss counters.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/kernelql/kernelql/internal/telemetry"
)

// Cache - generic cache implementation
type Cache[V any] struct {
	Cache map[string]V
	Mutex *sync.RWMutex
	Name  string
}

// NewCache - create new cache with generic type V
func NewCache[V any](name string) *Cache[V] {
	return &Cache[V]{
		Name:  name,
		Cache: make(map[string]V),
		Mutex: &sync.RWMutex{},
	}
}

// Get - fetch value from cache by key
func (c *Cache[V]) Get(ctx context.Context, key string) (V, bool) {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()

	value, found := c.Cache[hashKey(key)]

	tlm := telemetry.TelemeterFromContext(ctx)
	tlm.Count(ctx, c.Name+"_cache_get", 1)

	if found {
		tlm.Count(ctx, c.Name+"_cache_hit", 1)
	} else {
		tlm.Count(ctx, c.Name+"_cache_miss", 1)
	}

	return value, found
}

// Put - put value into cache by key
func (c *Cache[V]) Put(ctx context.Context, key string, value V) {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()

	telemetry.TelemeterFromContext(ctx).Count(ctx, c.Name+"_cache_put", 1)
	c.Cache[hashKey(key)] = value
}

// Delete removes the value stored under key.
func (c *Cache[V]) Delete(key string) {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()

	delete(c.Cache, hashKey(key))
}

// Purge drops every value.
func (c *Cache[V]) Purge() {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()

	c.Cache = make(map[string]V)
}

// Len returns the number of cached values.
func (c *Cache[V]) Len() int {
	c.Mutex.RLock()
	defer c.Mutex.RUnlock()

	return len(c.Cache)
}

// ExpiringItem - item with expiration time
type ExpiringItem[V any] struct {
	Value      V
	Expiration time.Time
}

// ExpiringCache - cache with items with expiration time
type ExpiringCache[V any] struct {
	Cache map[string]ExpiringItem[V]
	Mutex *sync.RWMutex
	Name  string
}

// NewExpiringCache - create new cache with generic type V
func NewExpiringCache[V any](name string) *ExpiringCache[V] {
	return &ExpiringCache[V]{
		Name:  name,
		Cache: make(map[string]ExpiringItem[V]),
		Mutex: &sync.RWMutex{},
	}
}

// Get - fetch value from cache by key. Expired items are evicted.
func (c *ExpiringCache[V]) Get(ctx context.Context, key string) (V, bool) {
	tlm := telemetry.TelemeterFromContext(ctx)
	tlm.Count(ctx, c.Name+"_cache_get", 1)

	c.Mutex.RLock()
	item, found := c.Cache[key]
	c.Mutex.RUnlock()

	if !found {
		tlm.Count(ctx, c.Name+"_cache_miss", 1)
		return item.Value, false
	}

	if time.Now().After(item.Expiration) {
		tlm.Count(ctx, c.Name+"_cache_expiry", 1)

		c.Mutex.Lock()
		if current, ok := c.Cache[key]; ok && current.Expiration.Equal(item.Expiration) {
			delete(c.Cache, key)
		}
		c.Mutex.Unlock()

		return item.Value, false
	}

	tlm.Count(ctx, c.Name+"_cache_hit", 1)

	return item.Value, true
}

// Put - put value into cache by key
func (c *ExpiringCache[V]) Put(ctx context.Context, key string, value V, expiration time.Time) {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()

	telemetry.TelemeterFromContext(ctx).Count(ctx, c.Name+"_cache_put", 1)
	c.Cache[key] = ExpiringItem[V]{Value: value, Expiration: expiration}
}

// Purge drops every item.
func (c *ExpiringCache[V]) Purge() {
	c.Mutex.Lock()
	defer c.Mutex.Unlock()

	c.Cache = make(map[string]ExpiringItem[V])
}

func hashKey(key string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
