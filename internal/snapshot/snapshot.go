// Package snapshot keeps the last successfully loaded copy of a collection so
// readers can fall back to it when the durable store is unavailable.
package snapshot

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache holds the last known good value of T.
type Cache[T any] struct {
	mu     sync.RWMutex
	value  T
	at     time.Time
	loaded bool

	// pending are changes the store has not confirmed yet. They are replayed,
	// in the order first held, over every freshly fetched value.
	pending []pendingChange[T]

	group singleflight.Group
}

type pendingChange[T any] struct {
	key   string
	apply func(T) T
}

// Get returns the cached value and when it was stored.
func (c *Cache[T]) Get() (T, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.at, c.loaded
}

// Set replaces the cached value.
func (c *Cache[T]) Set(v T, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.at = at
	c.loaded = true
}

// Hold records an unconfirmed change under key. Holding an already held key
// chains the new change after the previous one. apply must be idempotent and
// must not modify its argument in place.
func (c *Cache[T]) Hold(key string, apply func(T) T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.pending {
		if c.pending[i].key == key {
			prev := c.pending[i].apply
			c.pending[i].apply = func(v T) T { return apply(prev(v)) }
			return
		}
	}
	c.pending = append(c.pending, pendingChange[T]{key: key, apply: apply})
}

// Release drops the changes held under key once the store has them.
func (c *Cache[T]) Release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.pending {
		if c.pending[i].key == key {
			c.pending = append(c.pending[:i:i], c.pending[i+1:]...)
			return
		}
	}
}

// Pending reports how many keys hold unconfirmed changes.
func (c *Cache[T]) Pending() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pending)
}

// Load calls fetch, collapsing concurrent callers into one call. On success the
// result, with held changes replayed over it, replaces the cache. On failure
// the previous value is returned with stale=true, or the fetch error when
// nothing was ever cached.
func (c *Cache[T]) Load(ctx context.Context, now time.Time, fetch func(context.Context) (T, error)) (value T, stale bool, err error) {
	v, fetchErr, _ := c.group.Do("load", func() (any, error) {
		fresh, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		for _, p := range c.pending {
			fresh = p.apply(fresh)
		}
		c.value = fresh
		c.at = now
		c.loaded = true
		return fresh, nil
	})
	if fetchErr == nil {
		return v.(T), false, nil
	}

	cached, _, ok := c.Get()
	if !ok {
		var zero T
		return zero, false, fetchErr
	}
	return cached, true, fetchErr
}
