package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/ppiankov/casefeed/internal/model"
)

// MemoryCache keeps snapshots in process memory
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries expire after ttl
func NewMemoryCache(ttl time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Get returns a copy of the cached snapshot for url
func (c *MemoryCache) Get(url string) (*model.Snapshot, bool) {
	val, found := c.cache.Get(Key(url))
	if !found {
		return nil, false
	}
	return clone(val.(*model.Snapshot)), true
}

// Put stores a copy of snapshot under its URL with the default TTL
func (c *MemoryCache) Put(snapshot *model.Snapshot) error {
	c.cache.Set(Key(snapshot.URL), clone(snapshot), gocache.DefaultExpiration)
	return nil
}

// Delete removes the snapshot for url
func (c *MemoryCache) Delete(url string) error {
	c.cache.Delete(Key(url))
	return nil
}

// Clear removes everything
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}

// Len returns the number of unexpired entries
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
