package store

import (
	"sync"
	"time"
)

// DefaultCacheTTL is the lookup cache lifetime when none is configured.
const DefaultCacheTTL = 30 * time.Second

// ttlCache memoizes lookups by id for a fixed duration.
// A nil cache or a non-positive ttl disables caching.
//
// gen advances on every invalidation. A reader takes Generation before
// loading and passes it to Put, so a value loaded before a concurrent
// write committed is never cached after that write's invalidation.
type ttlCache[T any] struct {
	mu            sync.Mutex
	gen           uint64
	ttl           time.Duration
	now           func() time.Time
	clone         func(T) T
	entries       map[string]cacheEntry[T]
	opCount       int
	cleanupEveryN int
}

type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func newTTLCache[T any](ttl time.Duration, clone func(T) T) *ttlCache[T] {
	if ttl <= 0 {
		return nil
	}
	return &ttlCache[T]{
		ttl:           ttl,
		now:           time.Now,
		clone:         clone,
		entries:       make(map[string]cacheEntry[T]),
		cleanupEveryN: 64,
	}
}

func (c *ttlCache[T]) Get(id string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return zero, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, id)
		return zero, false
	}
	return c.clone(entry.value), true
}

// Generation returns the current invalidation generation.
func (c *ttlCache[T]) Generation() uint64 {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Put caches value unless an invalidation happened since gen was taken.
func (c *ttlCache[T]) Put(id string, value T, gen uint64) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}
	now := c.now()
	c.entries[id] = cacheEntry[T]{value: c.clone(value), expiresAt: now.Add(c.ttl)}
	c.maybeCleanupLocked(now)
}

func (c *ttlCache[T]) Invalidate(id string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	delete(c.entries, id)
}

func (c *ttlCache[T]) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	clear(c.entries)
}

func (c *ttlCache[T]) Len() int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ttlCache[T]) maybeCleanupLocked(now time.Time) {
	c.opCount++
	if c.opCount%c.cleanupEveryN != 0 {
		return
	}
	for id, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, id)
		}
	}
}
