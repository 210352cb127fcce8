// Package cache keeps recently fetched source pages so repeated runs do not
// hit the publisher.
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/ppiankov/casefeed/internal/model"
)

// Cache stores page snapshots keyed by URL
type Cache interface {
	Get(url string) (*model.Snapshot, bool)
	Put(snapshot *model.Snapshot) error
	Delete(url string) error
	Clear() error
}

// Key generates a cache key from a URL
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "casefeed:v1:" + hex.EncodeToString(hash[:])
}

// clone returns a copy the caller may mutate without touching the cached value
func clone(s *model.Snapshot) *model.Snapshot {
	c := *s
	if s.Meta.Headers != nil {
		c.Meta.Headers = make(map[string]string, len(s.Meta.Headers))
		for k, v := range s.Meta.Headers {
			c.Meta.Headers[k] = v
		}
	}
	return &c
}
