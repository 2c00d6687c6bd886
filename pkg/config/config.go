// Package config loads pageviz settings from defaults, a config file and
// the environment, in that order of precedence (later wins).
//
// Files may be YAML (.yaml, .yml) or TOML (.toml). Environment variables
// use the PAGEVIZ_ prefix with a double underscore between section and key:
//
//	PAGEVIZ_LAYOUT__ENGINE=graphviz
//	PAGEVIZ_CACHE__BACKEND=redis
//	PAGEVIZ_CACHE__REDIS_ADDR=localhost:6379
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/matzehuels/pageviz/pkg/cache"
	"github.com/matzehuels/pageviz/pkg/errors"
	"github.com/matzehuels/pageviz/pkg/layout"
	"github.com/matzehuels/pageviz/pkg/pipeline"
	"github.com/matzehuels/pageviz/pkg/view"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PAGEVIZ_"

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the complete pageviz configuration.
type Config struct {
	Layout LayoutConfig `koanf:"layout" yaml:"layout" toml:"layout"`
	Render RenderConfig `koanf:"render" yaml:"render" toml:"render"`
	Cache  CacheConfig  `koanf:"cache" yaml:"cache" toml:"cache"`
	Server ServerConfig `koanf:"server" yaml:"server" toml:"server"`
	Source SourceConfig `koanf:"source" yaml:"source" toml:"source"`
	Log    LogConfig    `koanf:"log" yaml:"log" toml:"log"`
}

// LayoutConfig controls card sizes and spacing.
type LayoutConfig struct {
	Engine        string  `koanf:"engine" yaml:"engine" toml:"engine"`
	NodeWidth     float64 `koanf:"node_width" yaml:"node_width" toml:"node_width"`
	BaseHeight    float64 `koanf:"base_height" yaml:"base_height" toml:"base_height"`
	SummaryHeight float64 `koanf:"summary_height" yaml:"summary_height" toml:"summary_height"`
	RankSep       float64 `koanf:"rank_sep" yaml:"rank_sep" toml:"rank_sep"`
	NodeSep       float64 `koanf:"node_sep" yaml:"node_sep" toml:"node_sep"`
	Margin        float64 `koanf:"margin" yaml:"margin" toml:"margin"`
}

// RenderConfig sets output defaults.
type RenderConfig struct {
	Format        string `koanf:"format" yaml:"format" toml:"format"`
	ShowSummaries bool   `koanf:"show_summaries" yaml:"show_summaries" toml:"show_summaries"`
	Background    string `koanf:"background" yaml:"background,omitempty" toml:"background,omitempty"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string `koanf:"backend" yaml:"backend" toml:"backend"`
	Dir           string `koanf:"dir" yaml:"dir,omitempty" toml:"dir,omitempty"`
	RedisAddr     string `koanf:"redis_addr" yaml:"redis_addr,omitempty" toml:"redis_addr,omitempty"`
	RedisPassword string `koanf:"redis_password" yaml:"redis_password,omitempty" toml:"redis_password,omitempty"`
	RedisDB       int    `koanf:"redis_db" yaml:"redis_db,omitempty" toml:"redis_db,omitempty"`
	Prefix        string `koanf:"prefix" yaml:"prefix,omitempty" toml:"prefix,omitempty"`
}

// ServerConfig configures `pageviz serve`.
type ServerConfig struct {
	Addr            string        `koanf:"addr" yaml:"addr" toml:"addr"`
	AllowAllOrigins bool          `koanf:"allow_all_origins" yaml:"allow_all_origins" toml:"allow_all_origins"`
	AllowedOrigins  []string      `koanf:"allowed_origins" yaml:"allowed_origins,omitempty" toml:"allowed_origins,omitempty"`
	SessionDir      string        `koanf:"session_dir" yaml:"session_dir,omitempty" toml:"session_dir,omitempty"`
	SessionTTL      time.Duration `koanf:"session_ttl" yaml:"session_ttl" toml:"session_ttl"`
	MaxUploadBytes  int64         `koanf:"max_upload_bytes" yaml:"max_upload_bytes" toml:"max_upload_bytes"`
}

// SourceConfig points at a MongoDB collection of outlines.
type SourceConfig struct {
	MongoURI   string `koanf:"mongo_uri" yaml:"mongo_uri,omitempty" toml:"mongo_uri,omitempty"`
	Database   string `koanf:"database" yaml:"database,omitempty" toml:"database,omitempty"`
	Collection string `koanf:"collection" yaml:"collection,omitempty" toml:"collection,omitempty"`
}

// LogConfig sets the log level (debug, info, warn, error).
type LogConfig struct {
	Level string `koanf:"level" yaml:"level" toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Engine:        layout.DefaultEngine,
			NodeWidth:     view.DefaultNodeWidth,
			BaseHeight:    view.DefaultBaseHeight,
			SummaryHeight: view.DefaultSummaryHeight,
			RankSep:       layout.DefaultRankSep,
			NodeSep:       layout.DefaultNodeSep,
			Margin:        layout.DefaultMargin,
		},
		Render: RenderConfig{
			Format: pipeline.DefaultFormat,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			Prefix:  cache.DefaultRedisPrefix,
		},
		Server: ServerConfig{
			Addr:           "localhost:8080",
			SessionTTL:     24 * time.Hour,
			MaxUploadBytes: 10 << 20,
		},
		Source: SourceConfig{
			Database:   "pageviz",
			Collection: "outlines",
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns ~/.config/pageviz/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pageviz", "config.yaml")
}

// Load reads the configuration file at path (if it exists) on top of the
// defaults, then overlays PAGEVIZ_* environment variables. An empty path
// skips the file. The result is validated.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			parser, err := parserFor(path)
			if err != nil {
				return nil, err
			}
			if err := k.Load(file.Provider(path), parser); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "unmarshalling config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps PAGEVIZ_LAYOUT__NODE_WIDTH to layout.node_width.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return TOML(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (use .yaml or .toml)", filepath.Ext(path))
	}
}

// Save writes the configuration to path, as TOML if the extension is .toml
// and YAML otherwise.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(c)
		data = []byte(sb.String())
	} else {
		data, err = yamlv3.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validBackends = map[string]bool{
	CacheNone:  true,
	CacheFile:  true,
	CacheRedis: true,
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if !layout.ValidEngines[c.Layout.Engine] {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid layout.engine %q: must be one of tidy, graphviz", c.Layout.Engine)
	}
	if c.Layout.NodeWidth <= 0 || c.Layout.BaseHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.node_width and layout.base_height must be positive")
	}
	if c.Layout.SummaryHeight < 0 || c.Layout.RankSep < 0 || c.Layout.NodeSep < 0 || c.Layout.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout spacing must not be negative")
	}
	if err := pipeline.ValidateFormat(c.Render.Format); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid render.format")
	}
	if !validBackends[c.Cache.Backend] {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid cache.backend %q: must be one of none, file, redis", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	if c.Server.SessionTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.session_ttl must not be negative")
	}
	if c.Server.MaxUploadBytes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_upload_bytes must not be negative")
	}
	if !validLevels[c.Log.Level] {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid log.level %q: must be one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// =============================================================================
// Conversions
// =============================================================================

// LayoutOptions returns the layout engine options.
func (c *Config) LayoutOptions() layout.Options {
	return layout.Options{
		Engine:  c.Layout.Engine,
		RankSep: c.Layout.RankSep,
		NodeSep: c.Layout.NodeSep,
		MarginX: c.Layout.Margin,
		MarginY: c.Layout.Margin,
	}
}

// Sizer returns the card sizer.
func (c *Config) Sizer() view.Sizer {
	return view.Sizer{
		Width:         c.Layout.NodeWidth,
		BaseHeight:    c.Layout.BaseHeight,
		SummaryHeight: c.Layout.SummaryHeight,
	}
}

// PipelineOptions returns pipeline options carrying the configured layout
// and render defaults.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Layout:        c.LayoutOptions(),
		Sizer:         c.Sizer(),
		Formats:       []string{c.Render.Format},
		ShowSummaries: c.Render.ShowSummaries,
		Background:    c.Render.Background,
	}
}
