// Package cache stores serialized documents and layout models.
//
// A [Cache] is a byte store with per-entry TTLs; a [Keyer] derives the keys.
// Keys are content-addressed: a layout key hashes the document payload
// together with every option that changes the geometry, so a changed
// configuration can never return a stale model.
//
// Backends:
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [NullCache]: never stores anything (--no-cache)
//   - [RedisCache]: shared cache for server deployments
//   - [MongoCache]: shared cache with documents {_id, data, expires_at}
//
// [Observe] wraps any backend and reports hits, misses and writes to the
// registered observability cache hooks.
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	TTLLayout   = 24 * time.Hour
	TTLDocument = time.Hour
)

// Cache is a byte store with expiration.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (nil, false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the options that change a layout model.
type LayoutKeyOpts struct {
	Collection string  `json:"collection,omitempty"`
	Config     string  `json:"config,omitempty"`
	Width      float64 `json:"width,omitempty"`
	Abbrevs    bool    `json:"abbrevs,omitempty"`
	Font       string  `json:"font,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// DocumentKey is the key of a decoded document payload.
	DocumentKey(docHash string) string

	// LayoutKey is the key of a layout model.
	LayoutKey(docHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DocumentKey returns "doc:<hash>".
func (DefaultKeyer) DocumentKey(docHash string) string {
	return "doc:" + docHash
}

// LayoutKey hashes the document hash together with opts.
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}
