package secrets

import (
	"context"
	"sync"
	"time"
)

// CachedProvider memoises successful lookups of a slower backend for ttl.
// Misses are not cached so a secret created after startup is picked up.
type CachedProvider struct {
	next SecretsProvider
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value   string
	expires time.Time
}

var _ SecretsProvider = (*CachedProvider)(nil)

func NewCachedProvider(next SecretsProvider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachedProvider) GetSecret(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && c.now().Before(entry.expires) {
		return entry.value, nil
	}

	value, err := c.next.GetSecret(ctx, key)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return value, nil
}

func (c *CachedProvider) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
	return c.next.Close()
}

func (c *CachedProvider) Type() string {
	return c.next.Type()
}
