// Package cache stores derived pageviz data (decoded documents, built graphs,
// layouts and rendered artifacts) behind a small byte-oriented interface.
//
// Three backends are provided:
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//
// Keys are produced by a [Keyer] so every entry point (CLI, server, watcher)
// agrees on them. Layouts are deterministic, which makes them safe to cache
// by the hash of the graph and the layout options.
package cache

import (
	"context"
	"time"
)

// Time-to-live defaults per entry type.
const (
	// TTLDocument bounds how long a document fetched from a remote source is
	// reused before it is fetched again.
	TTLDocument = 10 * time.Minute

	// TTLGraph is the lifetime of a built graph keyed by document hash.
	TTLGraph = 24 * time.Hour

	// TTLLayout is the lifetime of a computed layout.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact is the lifetime of a rendered artifact.
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get returns the value for key. hit is false on a miss or expiry.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear drops every entry of c if the backend supports it.
func Clear(ctx context.Context, c Cache) error {
	if cl, ok := c.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return nil
}
