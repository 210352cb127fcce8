package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/casefeed/internal/model"
)

// DiskCache persists snapshots as JSON files under a directory
type DiskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewDiskCache creates a disk cache rooted at dir
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: dir,
		ttl: ttl,
		now: time.Now,
	}
}

type diskEntry struct {
	Snapshot  *model.Snapshot `json:"snapshot"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Get reads the snapshot for url, dropping it if expired or unreadable
func (c *DiskCache) Get(url string) (*model.Snapshot, bool) {
	path := c.path(url)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Snapshot == nil {
		_ = os.Remove(path)
		return nil, false
	}

	if c.now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Snapshot, true
}

// Put writes snapshot to disk
func (c *DiskCache) Put(snapshot *model.Snapshot) error {
	entry := diskEntry{
		Snapshot:  snapshot,
		ExpiresAt: c.now().Add(c.ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// write-then-rename so concurrent readers never see a partial file
	path := c.path(snapshot.URL)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename cache file: %w", err)
	}

	return nil
}

// Delete removes the snapshot for url
func (c *DiskCache) Delete(url string) error {
	if err := os.Remove(c.path(url)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes the whole cache directory
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

func (c *DiskCache) path(url string) string {
	return filepath.Join(c.dir, Key(url)+".json")
}
