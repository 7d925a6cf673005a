// Package cache stores rendered artifacts by content-derived keys.
//
// A render is fully determined by its inputs: the base image bytes, the
// record files and the style of each pass. [Keyer.ArtifactKey] hashes those
// inputs into a key, and a [Cache] maps the key to the encoded output, so
// rendering identical inputs twice is a lookup.
//
// # Backends
//
//   - [FileCache]: entries as files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP service
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// All backends treat a missing or expired entry as a miss (hit == false,
// err == nil). Errors are reserved for backend failures, which callers log
// and otherwise ignore: a broken cache must never break a render.
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long rendered outputs are kept. Keys are content
// hashes, so an entry never goes stale; the TTL only bounds disk use.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte store with optional per-entry expiry.
type Cache interface {
	// Get returns the data stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero keeps the entry until it is
	// deleted or the cache is cleared.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
