package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/persistorai/kinship/internal/security"
)

const (
	tenantCacheTTL   = 5 * time.Minute
	negativeCacheTTL = 30 * time.Second
	maxCacheEntries  = 10000
)

// errCachedNotFound is returned for negative cache hits.
var errCachedNotFound = errors.New("tenant not found (cached)")

// CachedTenantLookup wraps a TenantLookup with bounded in-memory caches keyed
// by API key hash, so raw keys are never held in memory. Successful lookups are
// kept for five minutes and failures for thirty seconds.
type CachedTenantLookup struct {
	inner    TenantLookup
	hits     *expirable.LRU[string, string]
	negative *expirable.LRU[string, struct{}]
}

// NewCachedTenantLookup creates a caching wrapper around the given TenantLookup.
func NewCachedTenantLookup(inner TenantLookup) *CachedTenantLookup {
	return &CachedTenantLookup{
		inner:    inner,
		hits:     expirable.NewLRU[string, string](maxCacheEntries, nil, tenantCacheTTL),
		negative: expirable.NewLRU[string, struct{}](maxCacheEntries, nil, negativeCacheTTL),
	}
}

// GetTenantByAPIKey returns a cached tenant ID or delegates to the inner lookup.
func (c *CachedTenantLookup) GetTenantByAPIKey(ctx context.Context, apiKey string) (string, error) {
	hk := security.HashAPIKey(apiKey)

	if tenantID, ok := c.hits.Get(hk); ok {
		return tenantID, nil
	}
	if c.negative.Contains(hk) {
		return "", errCachedNotFound
	}

	tenantID, err := c.inner.GetTenantByAPIKey(ctx, apiKey)
	if err != nil {
		if ctx.Err() == nil {
			c.negative.Add(hk, struct{}{})
		}
		return "", err
	}

	c.hits.Add(hk, tenantID)
	return tenantID, nil
}

// Invalidate drops any cached result for the key.
func (c *CachedTenantLookup) Invalidate(apiKey string) {
	hk := security.HashAPIKey(apiKey)
	c.hits.Remove(hk)
	c.negative.Remove(hk)
}
