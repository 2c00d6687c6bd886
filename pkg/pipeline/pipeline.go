// Package pipeline provides the document pipeline shared by the CLI, the
// HTTP server and the interactive explorer.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: decode an outline document and flatten it into a graph
//  2. Layout: size every node card and compute positions with a layout engine
//  3. Render: project the positioned graph through the current collapse and
//     search state and encode the visible part (SVG, PNG, PDF, DOT, JSON, YAML)
//
// Each stage can be run independently or as part of the complete pipeline.
// Build and layout results are cached by content hash, so re-rendering the
// same document with a different collapse set or query never lays it out
// again.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, data, pipeline.Options{
//	    Source:   "report.json",
//	    Formats:  []string{"svg"},
//	    Collapse: []string{"node-3"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	g, hash, _, err := runner.BuildWithCacheInfo(ctx, data, opts)
//	positioned, _, _, err := runner.LayoutWithCacheInfo(ctx, g, hash, opts)
//	p := pipeline.Project(positioned, opts)
//	artifacts, _, err := runner.RenderWithCacheInfo(ctx, p, positioned, opts)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pageviz/pkg/cache"
	"github.com/matzehuels/pageviz/pkg/errors"
	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/layout"
	"github.com/matzehuels/pageviz/pkg/view"
)

// =============================================================================
// Formats
// =============================================================================

// Format constants for output formats.
const (
	FormatSVG    = "svg"     // card diagram painted from the computed layout
	FormatPNG    = "png"     // FormatSVG rasterized
	FormatPDF    = "pdf"     // FormatSVG converted
	FormatDOT    = "dot"     // Graphviz source of the visible graph
	FormatDOTSVG = "dot.svg" // FormatDOT laid out and drawn by Graphviz
	FormatJSON   = "json"    // the projection
	FormatYAML   = "yaml"    // the projection
	FormatGraph  = "graph"   // the full positioned graph, ignoring view state
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:    true,
	FormatPNG:    true,
	FormatPDF:    true,
	FormatDOT:    true,
	FormatDOTSVG: true,
	FormatJSON:   true,
	FormatYAML:   true,
	FormatGraph:  true,
}

// FormatNames returns the supported formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// DefaultFormat is used when no format is requested.
const DefaultFormat = FormatSVG

// DefaultPNGScale is the rasterization scale for FormatPNG.
const DefaultPNGScale = 2.0

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Source names the document in logs, hooks and the document cache.
	Source string `json:"source,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Layout options
	Layout layout.Options `json:"layout"`
	Sizer  view.Sizer     `json:"sizer"`

	// View options
	Collapse []string `json:"collapse,omitempty"` // node ids to collapse
	Query    string   `json:"query,omitempty"`    // search text

	// Render options
	Formats       []string `json:"formats,omitempty"`
	ShowSummaries bool     `json:"show_summaries,omitempty"`
	Background    string   `json:"background,omitempty"`
	DetailedDOT   bool     `json:"detailed_dot,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the positioned graph.
	Graph *graph.Graph

	// DocHash is the content hash of the input document.
	DocHash string

	// GraphHash is the content hash of the unpositioned graph.
	GraphHash string

	// Projection is the visible part of Graph after collapse and search.
	Projection view.Projection

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	MaxDepth   int
	Visible    int
	Matches    int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the graph came from cache
	LayoutHit bool // Whether positions came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)",
			format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	if err := o.Layout.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if o.Sizer == (view.Sizer{}) {
		o.Sizer = view.DefaultSizer()
	}
	o.setLogger()
	return nil
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Engine:        o.Layout.Engine,
		RankSep:       o.Layout.RankSep,
		NodeSep:       o.Layout.NodeSep,
		MarginX:       o.Layout.MarginX,
		MarginY:       o.Layout.MarginY,
		NodeWidth:     o.Sizer.Width,
		BaseHeight:    o.Sizer.BaseHeight,
		SummaryHeight: o.Sizer.SummaryHeight,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:        format,
		ShowSummaries: o.ShowSummaries,
		Background:    o.Background,
		DetailedDOT:   o.DetailedDOT,
	}
}

// String summarizes the options for debug logs.
func (o *Options) String() string {
	return fmt.Sprintf("engine=%s formats=%v collapse=%v query=%q",
		o.Layout.Engine, o.Formats, o.Collapse, o.Query)
}
