package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pageviz/pkg/buildinfo"
	"github.com/matzehuels/pageviz/pkg/cache"
	"github.com/matzehuels/pageviz/pkg/config"
	"github.com/matzehuels/pageviz/pkg/pipeline"
	"github.com/matzehuels/pageviz/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "pageviz"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the config file to load. Empty uses config.DefaultPath.
	ConfigPath string

	cfg *config.Config

	// stdout receives artifacts written with -o -; stderr receives the
	// logger and spinner output.
	stdout io.Writer
	stderr io.Writer
}

// New creates a new CLI instance that logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), stdout: os.Stdout, stderr: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "pageviz draws document outlines as collapsible diagrams",
		Long:          `pageviz turns a nested document outline (PageIndex JSON) into a node-and-edge diagram you can collapse, search, render, explore in the terminal or serve over HTTP.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default ~/.config/pageviz/config.yaml)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and environment. A log.level of debug
// lowers the logger level; --verbose is applied afterwards and wins.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath())
	if err != nil {
		return err
	}
	c.cfg = cfg
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil && lvl < c.Logger.GetLevel() {
		c.Logger.SetLevel(lvl)
	}
	return nil
}

// config returns the loaded configuration, or the defaults when commands run
// without the root pre-run (tests).
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// pipelineOptions returns pipeline options seeded from the configuration.
func (c *CLI) pipelineOptions(sourceName string) pipeline.Options {
	opts := c.config().PipelineOptions()
	opts.Source = sourceName
	opts.Logger = c.Logger
	return opts
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A file cache that cannot
// be opened degrades to no caching; an unreachable Redis is an error.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, c.config().Keyer(), c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	ch, err := c.config().OpenCache(ctx)
	if err != nil {
		if c.config().Cache.Backend == config.CacheRedis {
			return nil, err
		}
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return ch, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory (~/.cache/pageviz/ unless
// configured otherwise).
func (c *CLI) cacheDir() (string, error) {
	return c.config().CacheDir()
}

// =============================================================================
// Input Helpers
// =============================================================================

// readInput reads a document from path, or from stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return source.ReadFile(path)
}

// parseList splits a comma-separated flag value, dropping empty entries.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if formats := parseList(s); len(formats) > 0 {
		return formats
	}
	return []string{pipeline.DefaultFormat}
}
