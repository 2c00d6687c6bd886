package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pageviz/pkg/cache"
	"github.com/matzehuels/pageviz/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the graph, layout and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInfoCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached entry of the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear(cmd.Context())
		},
	}
}

func (c *CLI) runCacheClear(ctx context.Context) error {
	cfg := c.config()
	if cfg.Cache.Backend == config.CacheNone {
		c.printInfo("Caching is disabled")
		return nil
	}

	ch, err := cfg.OpenCache(ctx)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer ch.Close()

	var count int
	if fc, ok := ch.(*cache.FileCache); ok {
		count, _, _ = dirUsage(fc.Dir())
	}
	if err := cache.Clear(ctx, ch); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	switch cfg.Cache.Backend {
	case config.CacheRedis:
		c.printSuccess("Cleared redis cache")
		c.printDetail("Prefix: %s", cfg.Cache.Prefix)
	default:
		dir, _ := c.cacheDir()
		c.printSuccess("Cleared %d cached entries", count)
		c.printDetail("Directory: %s", dir)
	}
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.stdout, dir)
			return nil
		},
	}
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the cache backend and its size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			c.printKeyValue("Backend", cfg.Cache.Backend)
			if cfg.Cache.Backend == config.CacheRedis {
				c.printKeyValue("Address", cfg.Cache.RedisAddr)
				c.printKeyValue("Prefix", cfg.Cache.Prefix)
				return nil
			}
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			count, size, err := dirUsage(dir)
			if err != nil {
				return err
			}
			c.printKeyValue("Directory", dir)
			c.printKeyValue("Entries", fmt.Sprintf("%d", count))
			c.printKeyValue("Size", formatSize(size))
			return nil
		},
	}
}

// dirUsage counts the files below dir and their total size. A missing
// directory is empty.
func dirUsage(dir string) (count int, size int64, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return fs.SkipDir
			}
			return nil // Skip unreadable entries, continue walking
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		count++
		size += info.Size()
		return nil
	})
	return count, size, err
}
