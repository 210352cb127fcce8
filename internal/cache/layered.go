package cache

import (
	"errors"
	"time"

	"github.com/ppiankov/casefeed/internal/model"
)

// LayeredCache checks memory first and falls back to disk
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a memory + disk cache
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get returns the snapshot for url, promoting disk hits into memory
func (c *LayeredCache) Get(url string) (*model.Snapshot, bool) {
	if s, found := c.memory.Get(url); found {
		return s, true
	}

	if s, found := c.disk.Get(url); found {
		_ = c.memory.Put(s)
		return s, true
	}

	return nil, false
}

// Put stores snapshot in both layers
func (c *LayeredCache) Put(snapshot *model.Snapshot) error {
	if err := c.memory.Put(snapshot); err != nil {
		return err
	}
	return c.disk.Put(snapshot)
}

// Delete removes url from both layers
func (c *LayeredCache) Delete(url string) error {
	return errors.Join(c.memory.Delete(url), c.disk.Delete(url))
}

// Clear empties both layers
func (c *LayeredCache) Clear() error {
	return errors.Join(c.memory.Clear(), c.disk.Clear())
}
