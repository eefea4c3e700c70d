package cache

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/tagc/internal/expr"
)

// MemoryCache implements in-memory caching with no expiration
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache. Entries live until the cache is
// dropped at the end of the run.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a program from the cache
func (c *MemoryCache) Get(key string) (*expr.Program, bool) {
	if val, found := c.cache.Get(key); found {
		return val.(*expr.Program), true
	}
	return nil, false
}

// Set stores a program in the cache
func (c *MemoryCache) Set(key string, prog *expr.Program) {
	c.cache.Set(key, prog, gocache.NoExpiration)
}

// Len returns the number of cached programs
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
