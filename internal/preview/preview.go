// Package preview serves inline-preview sources for files: a TTL cache
// of short-lived signed URLs, with an authenticated blob fetch as the
// fallback for files that have no direct signed access.
package preview

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Jahid786-lang/vensar-drive/internal/api"
	"github.com/Jahid786-lang/vensar-drive/internal/domain"
	"github.com/Jahid786-lang/vensar-drive/internal/logger"
)

// DefaultTTL is how long a cached signed URL is served. It must stay
// strictly shorter than the backend's own signed-URL lifetime so a
// cached URL is never handed out after the storage layer rejects it.
const DefaultTTL = 4 * time.Minute

// Fetcher is the slice of the backend client the cache needs.
type Fetcher interface {
	ViewURL(ctx context.Context, fileID string) (api.ViewURLResult, error)
	Download(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Kind says how the preview source is delivered.
type Kind int

const (
	// KindURL is a signed URL the viewer can load directly
	KindURL Kind = iota
	// KindBlob is a fetched content stream; the caller owns Blob and
	// must close it when the preview leaves the screen
	KindBlob
)

// Source is what a preview component renders from.
type Source struct {
	Kind     Kind
	URL      string
	MimeType string
	Blob     io.ReadCloser
}

type entry struct {
	url       string
	mimeType  string
	expiresAt time.Time
}

// Cache is the process-wide signed-URL cache. Create one per client
// session and Clear it on logout.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	log     logger.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]entry

	// flight collapses concurrent misses for the same file into one
	// view-url request
	flight singleflight.Group
}

// Option customizes a Cache.
type Option func(*Cache)

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// NewCache creates a cache over the given fetcher.
func NewCache(fetcher Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher: fetcher,
		ttl:     DefaultTTL,
		log:     logger.Get().With("component", "preview"),
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns a preview source for the file. Within the TTL a
// cached signed URL is served without any network traffic; expired
// entries are treated as absent and refetched. Files without signed
// access degrade to a blob fetch whose reader the caller must close.
// Any failure surfaces as domain.ErrPreviewUnavailable so the view can
// fall back to a placeholder without special-casing.
func (c *Cache) Source(ctx context.Context, fileID string) (Source, error) {
	if e, ok := c.lookup(fileID); ok {
		return Source{Kind: KindURL, URL: e.url, MimeType: e.mimeType}, nil
	}

	v, err, _ := c.flight.Do(fileID, func() (any, error) {
		// Re-check: another caller may have filled the entry while
		// this one waited on the flight.
		if e, ok := c.lookup(fileID); ok {
			return e, nil
		}

		result, err := c.fetcher.ViewURL(ctx, fileID)
		if err != nil {
			return nil, err
		}
		if result.URL == nil {
			// No signed access for this file; blob fallback happens
			// outside the flight, per caller.
			return entry{}, nil
		}

		e := entry{
			url:       *result.URL,
			mimeType:  result.MimeType,
			expiresAt: c.now().Add(c.ttl),
		}
		c.store(fileID, e)
		return e, nil
	})
	if err != nil {
		c.log.Warn("view url fetch failed", "file_id", fileID, "error", err)
		return Source{}, fmt.Errorf("%w: %v", domain.ErrPreviewUnavailable, err)
	}

	e := v.(entry)
	if e.url != "" {
		return Source{Kind: KindURL, URL: e.url, MimeType: e.mimeType}, nil
	}

	// Blob references are never cached: their lifetime belongs to the
	// consuming view, not to this cache.
	blob, err := c.fetcher.Download(ctx, fileID)
	if err != nil {
		c.log.Warn("preview blob fetch failed", "file_id", fileID, "error", err)
		return Source{}, fmt.Errorf("%w: %v", domain.ErrPreviewUnavailable, err)
	}
	return Source{Kind: KindBlob, Blob: blob}, nil
}

// Invalidate drops one file's entry (e.g. after the file is replaced).
func (c *Cache) Invalidate(fileID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, fileID)
}

// Clear empties the cache. Call on logout so signed URLs issued for
// one user never survive into another session.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of live (unexpired) entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (c *Cache) lookup(fileID string) (entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fileID]
	if !ok {
		return entry{}, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, fileID)
		return entry{}, false
	}
	return e, true
}

func (c *Cache) store(fileID string, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fileID] = e
}
