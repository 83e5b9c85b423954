package translation

import (
	"context"
	"sync"
)

// Cache wraps a Gateway so that repeated calls for the same term return
// the cached result without a new external request. Results are immutable
// once produced; only successful lookups are cached.
type Cache struct {
	gateway Gateway

	mu      sync.Mutex
	results map[string]Result
}

// NewCache creates a caching wrapper around gw.
func NewCache(gw Gateway) *Cache {
	return &Cache{
		gateway: gw,
		results: make(map[string]Result),
	}
}

// Translate returns the cached result for term, consulting the wrapped
// gateway on a miss.
func (c *Cache) Translate(ctx context.Context, term string) (Result, error) {
	c.mu.Lock()
	if result, ok := c.results[term]; ok {
		c.mu.Unlock()
		return result, nil
	}
	c.mu.Unlock()

	result, err := c.gateway.Translate(ctx, term)
	if err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	c.results[term] = result
	c.mu.Unlock()
	return result, nil
}

// Name returns the wrapped provider name.
func (c *Cache) Name() string {
	return c.gateway.Name()
}

// Seed pre-populates the cache, used when resuming from persisted state.
func (c *Cache) Seed(term string, result Result) {
	c.mu.Lock()
	c.results[term] = result
	c.mu.Unlock()
}
