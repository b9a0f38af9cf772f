package fetcher

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	doc *Document
	err error
}

// Cache wraps a Fetcher so each URL is fetched at most once during a single
// graph build. Concurrent callers for the same URL share the one in-flight
// request. Failures are remembered as well, except those caused by the
// caller's own context ending, so a later caller with time left retries.
type Cache struct {
	next  Fetcher
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache creates an empty cache in front of next.
func NewCache(next Fetcher) *Cache {
	return &Cache{next: next, entries: make(map[string]cacheEntry)}
}

func (c *Cache) lookup(rawURL string) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[rawURL]

	return e, ok
}

// Fetch returns the cached outcome for rawURL or fetches it. A caller that
// joined a fetch whose own context ended retries under its context.
func (c *Cache) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	for {
		if e, ok := c.lookup(rawURL); ok {
			return e.doc, e.err
		}

		v, _, _ := c.group.Do(rawURL, func() (any, error) {
			if e, ok := c.lookup(rawURL); ok {
				return e, nil
			}

			doc, err := c.next.Fetch(ctx, rawURL)
			e := cacheEntry{doc: doc, err: err}
			if err == nil || ctx.Err() == nil {
				c.mu.Lock()
				c.entries[rawURL] = e
				c.mu.Unlock()
			}

			return e, nil
		})
		e, _ := v.(cacheEntry)
		if e.err == nil || ctx.Err() != nil {
			return e.doc, e.err
		}
		if kept, ok := c.lookup(rawURL); ok {
			return kept.doc, kept.err
		}
	}
}

// Len returns the number of URLs with a remembered outcome.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
