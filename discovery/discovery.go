// Package discovery caches candidate model lists per provider.
//
// Providers periodically expose new model identifiers; the clients in this
// module ask discovery for an ordered candidate list instead of hardcoding
// one. Lists are fetched on demand, cached with a TTL, and replaced by a
// static fallback when the fetch keeps failing, so a flaky listing endpoint
// never blocks a query.
package discovery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/askmany/askmany/provider"
)

// DefaultTTL is how long a fetched model list stays fresh.
const DefaultTTL = time.Hour

// FetchFunc retrieves the ordered candidate model list for a provider.
type FetchFunc func(ctx context.Context) ([]string, error)

type entry struct {
	models    []string
	fetchedAt time.Time
}

// Cache caches model lists per provider with a TTL.
// Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache with the default TTL.
func NewCache() *Cache {
	return NewCacheWithTTL(DefaultTTL)
}

// NewCacheWithTTL creates a cache with a custom TTL.
// Non-positive TTL disables caching (every call fetches).
func NewCacheWithTTL(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Models returns the candidate model list for the named provider.
// A fresh cached list is returned immediately. Otherwise fetch is called with
// bounded retries; if it still fails, the fallback list is returned (and not
// cached, so the next call tries the fetch again).
func (c *Cache) Models(ctx context.Context, name string, fetch FetchFunc, fallback []string) []string {
	c.mu.Lock()
	if e, ok := c.entries[name]; ok && c.ttl > 0 && c.now().Sub(e.fetchedAt) < c.ttl {
		models := e.models
		c.mu.Unlock()
		return models
	}
	c.mu.Unlock()

	var models []string
	err := provider.Retry(ctx, provider.DefaultMaxRetries, func(ctx context.Context) error {
		var ferr error
		models, ferr = fetch(ctx)
		return ferr
	})
	if err != nil || len(models) == 0 {
		slog.Warn("model discovery failed, using fallback list",
			slog.String("provider", name),
			slog.Any("error", err))
		return fallback
	}

	c.mu.Lock()
	c.entries[name] = entry{models: models, fetchedAt: c.now()}
	c.mu.Unlock()
	return models
}

// Invalidate drops the cached list for the named provider.
func (c *Cache) Invalidate(name string) {
	c.mu.Lock()
	delete(c.entries, name)
	c.mu.Unlock()
}
