// Package source fetches outline documents from where they are stored.
//
// A [Source] lists the documents it knows about and returns their raw JSON.
// Three backends are provided:
//
//   - [Dir]: every *.json file in a directory (the document picker of the
//     explorer and the server)
//   - [File]: a single file
//   - [Mongo]: one outline per document of a MongoDB collection
//
// [Cached] wraps any source with a [cache.Cache], retrying transient
// failures of the wrapped source with backoff.
package source

import (
	"context"
	"time"

	"github.com/matzehuels/pageviz/pkg/cache"
)

// Entry describes one document of a source.
type Entry struct {
	// Key identifies the document within its source (file name, object id).
	Key string `json:"key"`
	// Name is the document title if known, otherwise the key.
	Name    string    `json:"name"`
	Size    int64     `json:"size,omitempty"`
	ModTime time.Time `json:"mod_time,omitzero"`
}

// Source provides outline documents.
type Source interface {
	// Name identifies the source in cache keys and logs.
	Name() string

	// List returns the available documents sorted by key.
	List(ctx context.Context) ([]Entry, error)

	// Fetch returns the raw JSON of one document. Unknown keys fail with a
	// NOT_FOUND or FILE_NOT_FOUND error.
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Cached serves Fetch from a cache before asking the wrapped source.
type Cached struct {
	Source Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
}

// NewCached wraps src. A nil keyer uses the default keyer and a zero TTL uses
// cache.TTLDocument.
func NewCached(src Source, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl == 0 {
		ttl = cache.TTLDocument
	}
	return &Cached{Source: src, Cache: c, Keyer: keyer, TTL: ttl}
}

// Name implements Source.
func (c *Cached) Name() string { return c.Source.Name() }

// List implements Source. Listings are never cached.
func (c *Cached) List(ctx context.Context) ([]Entry, error) {
	return c.Source.List(ctx)
}

// Fetch implements Source.
func (c *Cached) Fetch(ctx context.Context, key string) ([]byte, error) {
	cacheKey := c.Keyer.DocumentKey(c.Source.Name(), key)
	if data, hit, err := c.Cache.Get(ctx, cacheKey); err == nil && hit {
		return data, nil
	}

	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = c.Source.Fetch(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = c.Cache.Set(ctx, cacheKey, data, c.TTL)
	return data, nil
}

// Refresh drops the cached copy of key.
func (c *Cached) Refresh(ctx context.Context, key string) error {
	return c.Cache.Delete(ctx, c.Keyer.DocumentKey(c.Source.Name(), key))
}

var _ Source = (*Cached)(nil)
