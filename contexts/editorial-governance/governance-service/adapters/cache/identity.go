package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"lexicon/contexts/editorial-governance/governance-service/ports"
)

const defaultIdentityTTL = time.Minute

// IdentityCache memoizes role answers of an upstream provider for a short
// TTL. Errors are never cached.
type IdentityCache struct {
	upstream ports.IdentityProvider
	cache    *gocache.Cache
}

func NewIdentityCache(upstream ports.IdentityProvider, ttl time.Duration) *IdentityCache {
	if ttl <= 0 {
		ttl = defaultIdentityTTL
	}
	return &IdentityCache{
		upstream: upstream,
		cache:    gocache.New(ttl, ttl*2),
	}
}

func (c *IdentityCache) IsReviewer(ctx context.Context, userID string) (bool, error) {
	return c.lookup(ctx, "reviewer:", userID, c.upstream.IsReviewer)
}

func (c *IdentityCache) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return c.lookup(ctx, "admin:", userID, c.upstream.IsAdmin)
}

// Invalidate drops cached answers for userID after a role change.
func (c *IdentityCache) Invalidate(userID string) {
	userID = strings.TrimSpace(userID)
	c.cache.Delete("reviewer:" + userID)
	c.cache.Delete("admin:" + userID)
}

func (c *IdentityCache) Flush() {
	c.cache.Flush()
}

func (c *IdentityCache) lookup(
	ctx context.Context,
	prefix string,
	userID string,
	fetch func(context.Context, string) (bool, error),
) (bool, error) {
	userID = strings.TrimSpace(userID)
	key := prefix + userID
	if cached, found := c.cache.Get(key); found {
		if value, ok := cached.(bool); ok {
			return value, nil
		}
	}
	value, err := fetch(ctx, userID)
	if err != nil {
		return false, err
	}
	c.cache.Set(key, value, gocache.DefaultExpiration)
	return value, nil
}

var _ ports.IdentityProvider = (*IdentityCache)(nil)
