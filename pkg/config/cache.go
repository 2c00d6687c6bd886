package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/pageviz/pkg/cache"
)

// CacheDir returns the cache directory: cache.dir if set, otherwise
// pageviz under the user cache directory.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "pageviz"), nil
}

// OpenCache opens the configured cache backend. The caller closes it.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   c.Cache.Prefix,
		})
	default:
		dir, err := c.CacheDir()
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	}
}

// Keyer returns the cache keyer for the configured backend. Redis applies
// cache.prefix itself; the file backend gets it through a scoped keyer so a
// shared cache directory can hold several namespaces.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Backend == CacheFile && c.Cache.Prefix != "" {
		return cache.NewScopedKeyer(nil, c.Cache.Prefix)
	}
	return cache.NewDefaultKeyer()
}
