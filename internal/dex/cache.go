package dex

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache is an append-only map. Concurrent misses for the same key share a
// single fetch, and failed fetches are not stored.
type Cache[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
	sf singleflight.Group
}

// NewCache creates an empty Cache.
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{m: make(map[K]V)}
}

// Get returns the cached value for k.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[k]
	return v, ok
}

// Put stores v under k. Writing a key twice replaces the value; callers only
// ever write the same upstream truth, so the replacement is idempotent.
func (c *Cache[K, V]) Put(k K, v V) {
	c.mu.Lock()
	c.m[k] = v
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// GetOrFetch returns the cached value for k, calling fetch on a miss.
func (c *Cache[K, V]) GetOrFetch(ctx context.Context, k K, fetch func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	res, err, _ := c.sf.Do(fmt.Sprint(k), func() (any, error) {
		if v, ok := c.Get(k); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		c.Put(k, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// NameCache holds localized display names per species id and language.
// Names are merged in and never removed.
type NameCache struct {
	mu sync.RWMutex
	m  map[int]map[string]string
}

// NewNameCache creates an empty NameCache.
func NewNameCache() *NameCache {
	return &NameCache{m: make(map[int]map[string]string)}
}

// Merge upserts names for id. Empty names are ignored.
func (c *NameCache) Merge(id int, names map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.m[id]
	if cur == nil {
		cur = make(map[string]string, len(names))
		c.m[id] = cur
	}
	for l, n := range names {
		if n != "" {
			cur[l] = n
		}
	}
}

// Get returns the cached name for id in lang.
func (c *NameCache) Get(id int, lang string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.m[id][lang]
	return n, ok
}

// Has reports whether a name for id in lang is cached.
func (c *NameCache) Has(id int, lang string) bool {
	_, ok := c.Get(id, lang)
	return ok
}

// Snapshot copies every cached name in lang, keyed by id.
func (c *NameCache) Snapshot(lang string) map[int]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[int]string, len(c.m))
	for id, names := range c.m {
		if n, ok := names[lang]; ok {
			out[id] = n
		}
	}
	return out
}
