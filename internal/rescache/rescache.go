// Package rescache is a small key→value read cache with TTL freshness
// and prefix invalidation. The explorer reads listings through it and
// invalidates whole key families after every mutation.
package rescache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Key is a hierarchical cache key. Invalidation matches on leading
// segments, so Key{"documents", folderID} is covered by an
// invalidation of Key{"documents"}.
type Key []string

// String renders the key for use as a map index. Segments are joined
// with a separator that cannot appear inside ids.
func (k Key) String() string {
	return strings.Join(k, "\x1f")
}

// HasPrefix reports whether the key starts with the given prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, seg := range prefix {
		if k[i] != seg {
			return false
		}
	}
	return true
}

type centry struct {
	key       Key
	value     any
	fetchedAt time.Time
}

// Cache holds fetched values until they go stale or their key prefix
// is invalidated.
type Cache struct {
	mu      sync.Mutex
	entries map[string]centry
	now     func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]centry),
		now:     time.Now,
	}
}

// NewWithClock creates a cache with an injected time source. Tests use
// this to step through staleness without sleeping.
func NewWithClock(now func() time.Time) *Cache {
	c := New()
	c.now = now
	return c
}

// Get returns the cached value for key when it is younger than ttl;
// otherwise it runs fetch and caches the result. When fetch fails and
// a stale value exists, the stale value is returned alongside the
// error so the caller can keep rendering while showing the failure.
func Get[T any](ctx context.Context, c *Cache, key Key, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	index := key.String()

	c.mu.Lock()
	e, ok := c.entries[index]
	if ok && c.now().Sub(e.fetchedAt) < ttl {
		value := e.value.(T)
		c.mu.Unlock()
		return value, nil
	}
	c.mu.Unlock()

	value, err := fetch(ctx)
	if err != nil {
		if ok {
			return e.value.(T), err
		}
		var zero T
		return zero, err
	}

	c.mu.Lock()
	c.entries[index] = centry{key: key, value: value, fetchedAt: c.now()}
	c.mu.Unlock()
	return value, nil
}

// Invalidate drops every entry whose key starts with prefix. An empty
// prefix drops everything.
func (c *Cache) Invalidate(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for index, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, index)
		}
	}
}

// Len returns the number of cached entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
