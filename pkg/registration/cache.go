package registration

import (
	"context"
	"net"
	"strings"
	"sync"

	"phishgraph/pkg/domain"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	rec *domain.RegistrationRecord
	err error
}

// Cache wraps a Resolver for the lifetime of one graph build. Each host is
// looked up at most once; concurrent lookups for the same host wait for the
// first one. Outcomes caused by the caller's own context ending are not kept.
type Cache struct {
	next  Resolver
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache creates an empty cache in front of next.
func NewCache(next Resolver) *Cache {
	return &Cache{next: next, entries: make(map[string]cacheEntry)}
}

func cacheKey(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	return strings.ToLower(host)
}

func (c *Cache) lookup(key string) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]

	return e, ok
}

// Lookup returns the remembered outcome for host or resolves it. A caller
// that joined a lookup whose own context ended retries under its context.
func (c *Cache) Lookup(ctx context.Context, host string) (*domain.RegistrationRecord, error) {
	key := cacheKey(host)
	for {
		if e, ok := c.lookup(key); ok {
			return e.rec, e.err
		}

		v, _, _ := c.group.Do(key, func() (any, error) {
			if e, ok := c.lookup(key); ok {
				return e, nil
			}

			rec, err := c.next.Lookup(ctx, host)
			e := cacheEntry{rec: rec, err: err}
			if err == nil || ctx.Err() == nil {
				c.mu.Lock()
				c.entries[key] = e
				c.mu.Unlock()
			}

			return e, nil
		})
		e, _ := v.(cacheEntry)
		if e.err == nil || ctx.Err() != nil {
			return e.rec, e.err
		}
		if kept, ok := c.lookup(key); ok {
			return kept.rec, kept.err
		}
	}
}

// Len returns the number of hosts with a remembered outcome.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
