package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/matzehuels/pageviz/pkg/cache"
	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/layout"
	"github.com/matzehuels/pageviz/pkg/observability"
	"github.com/matzehuels/pageviz/pkg/render"
	"github.com/matzehuels/pageviz/pkg/view"
)

// Cache key types reported to observability hooks.
const (
	keyTypeGraph    = "graph"
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the server and the explorer all use it so caching behaves the same
// everywhere.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	opts.Logger.Debug("running pipeline", "source", opts.Source, "options", opts.String())

	result := &Result{DocHash: cache.Hash(data)}

	// Stage 1: Build
	buildStart := time.Now()
	g, graphHash, buildHit, err := r.BuildWithCacheInfo(ctx, data, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.GraphHash = graphHash
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.MaxDepth = g.MaxDepth()
	result.CacheInfo.BuildHit = buildHit

	opts.Logger.Info("built graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"max_depth", g.MaxDepth(),
		"duration", result.Stats.BuildTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	positioned, _, layoutHit, err := r.LayoutWithCacheInfo(ctx, g, graphHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Graph = positioned
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"engine", opts.Layout.Engine,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	result.Projection = Project(positioned, opts)
	result.Stats.Visible = len(result.Projection.Nodes)
	result.Stats.Matches = result.Projection.MatchCount

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Projection, positioned, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"visible", result.Stats.Visible,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo decodes data and builds its graph with caching.
// It returns the graph, the hash of its serialized form and whether it came
// from the cache.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, data []byte, opts Options) (*graph.Graph, string, bool, error) {
	r.applyLogger(&opts)
	cacheKey := r.Keyer.GraphKey(cache.Hash(data))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if g, err := graph.UnmarshalGraph(cached); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeGraph)
				return g, cache.Hash(cached), true, nil
			}
			opts.Logger.Warn("discarding unreadable cached graph", "key", cacheKey)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeGraph)
	}

	start := time.Now()
	observability.Pipeline().OnBuildStart(ctx, opts.Source)
	g, err := Build(data)
	nodes := 0
	if g != nil {
		nodes = g.NodeCount()
	}
	observability.Pipeline().OnBuildComplete(ctx, opts.Source, nodes, time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	encoded, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize graph: %w", err)
	}
	r.store(ctx, keyTypeGraph, cacheKey, encoded, cache.TTLGraph)

	return g, cache.Hash(encoded), false, nil
}

// LayoutWithCacheInfo positions g with caching. graphHash identifies g; pass
// an empty string to have it computed.
//
// A cached result is only used when it still satisfies [layout.Verify] for
// the current request, so a stale or corrupted entry is recomputed rather
// than drawn.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *graph.Graph, graphHash string, opts Options) (*graph.Graph, layout.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, layout.Result{}, false, err
	}

	if graphHash == "" {
		encoded, err := graph.MarshalGraph(g)
		if err != nil {
			return nil, layout.Result{}, false, fmt.Errorf("serialize graph for cache key: %w", err)
		}
		graphHash = cache.Hash(encoded)
	}
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())
	req := Request(g, opts)

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var res layout.Result
			if err := json.Unmarshal(cached, &res); err == nil && layout.Verify(req, res) == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeLayout)
				return g.WithGeometry(req.Sizes(), res.Positions), res, true, nil
			}
			opts.Logger.Warn("discarding invalid cached layout", "key", cacheKey)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
	}

	engine, err := layout.New(opts.Layout.Engine)
	if err != nil {
		return nil, layout.Result{}, false, err
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, engine.Name(), g.NodeCount())
	positioned, res, err := layout.Apply(ctx, engine, g, req)
	observability.Pipeline().OnLayoutComplete(ctx, engine.Name(), time.Since(start), err)
	if err != nil {
		return nil, layout.Result{}, false, err
	}

	if encoded, err := json.Marshal(res); err == nil {
		r.store(ctx, keyTypeLayout, cacheKey, encoded, cache.TTLLayout)
	}
	return positioned, res, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// g is the positioned graph, used for [FormatGraph].
func (r *Runner) RenderWithCacheInfo(ctx context.Context, p view.Projection, g *graph.Graph, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from the projection
	encoded, err := render.EncodeJSON(p)
	if err != nil {
		return nil, false, fmt.Errorf("serialize projection for cache key: %w", err)
	}
	viewHash := cache.Hash(encoded)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			if format == FormatGraph {
				break
			}
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(viewHash, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			return artifacts, true, nil // All artifacts from cache
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
	}

	rendered, err := Render(ctx, p, g, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format; the graph export is keyed by geometry, not view
	for format, data := range rendered {
		if format == FormatGraph {
			continue
		}
		r.store(ctx, keyTypeArtifact, r.Keyer.ArtifactKey(viewHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
	}

	return rendered, false, nil
}

// store writes to the cache, ignoring failures other than logging them.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
