package layout

import (
	"context"
	"fmt"

	"github.com/matzehuels/pageviz/pkg/errors"
	"github.com/matzehuels/pageviz/pkg/graph"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultRankSep is the vertical gap between consecutive ranks, in points.
	DefaultRankSep = 100.0

	// DefaultNodeSep is the horizontal gap between neighbouring boxes, in points.
	DefaultNodeSep = 60.0

	// DefaultMargin is the empty border around the drawing, in points.
	DefaultMargin = 40.0

	// DefaultEngine is the engine used when none is configured.
	DefaultEngine = EngineTidy
)

// Engine names accepted by [New].
const (
	EngineTidy     = "tidy"
	EngineGraphviz = "graphviz"
)

// ValidEngines is the set of supported engine names.
var ValidEngines = map[string]bool{
	EngineTidy:     true,
	EngineGraphviz: true,
}

// Direction is the rank direction of a layout.
type Direction string

// TopBottom places the root at the top and ranks grow downward.
// It is the only direction engines are required to support.
const TopBottom Direction = "TB"

// =============================================================================
// Request / Result
// =============================================================================

// NodeBox is the size of one node to position.
type NodeBox struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Link is a parent→child relation between two request nodes.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Request is the input to an engine. Node order is significant: children are
// placed left to right in the order their edges appear.
type Request struct {
	Nodes     []NodeBox `json:"nodes"`
	Edges     []Link    `json:"edges"`
	Direction Direction `json:"direction"`
	RankSep   float64   `json:"rank_sep"`
	NodeSep   float64   `json:"node_sep"`
	MarginX   float64   `json:"margin_x"`
	MarginY   float64   `json:"margin_y"`
}

// Result holds the computed top-left corner of every request node together
// with the extent of the drawing (margins included).
type Result struct {
	Positions map[string]graph.Point `json:"positions"`
	Width     float64                `json:"width"`
	Height    float64                `json:"height"`
}

// Engine computes positions for a request.
type Engine interface {
	// Name returns the engine identifier used in configuration and cache keys.
	Name() string
	// Layout positions every node of req.
	Layout(ctx context.Context, req Request) (Result, error)
}

// New returns the engine registered under name. An empty name selects
// [DefaultEngine].
func New(name string) (Engine, error) {
	switch name {
	case "", EngineTidy:
		return NewTidy(), nil
	case EngineGraphviz:
		return NewGraphviz(), nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown layout engine %q (must be one of: tidy, graphviz)", name)
	}
}

// =============================================================================
// Options
// =============================================================================

// Options controls spacing and engine selection.
type Options struct {
	Engine  string  `json:"engine,omitempty" yaml:"engine,omitempty"`
	RankSep float64 `json:"rank_sep,omitempty" yaml:"rank_sep,omitempty"`
	NodeSep float64 `json:"node_sep,omitempty" yaml:"node_sep,omitempty"`
	MarginX float64 `json:"margin_x,omitempty" yaml:"margin_x,omitempty"`
	MarginY float64 `json:"margin_y,omitempty" yaml:"margin_y,omitempty"`
}

// ValidateAndSetDefaults fills zero fields with defaults and rejects unknown
// engines and negative spacing. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if !ValidEngines[o.Engine] {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid layout engine: %q (must be one of: tidy, graphviz)", o.Engine)
	}
	if o.RankSep == 0 {
		o.RankSep = DefaultRankSep
	}
	if o.NodeSep == 0 {
		o.NodeSep = DefaultNodeSep
	}
	if o.MarginX == 0 {
		o.MarginX = DefaultMargin
	}
	if o.MarginY == 0 {
		o.MarginY = DefaultMargin
	}
	if o.RankSep < 0 || o.NodeSep < 0 || o.MarginX < 0 || o.MarginY < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout spacing must not be negative")
	}
	return nil
}

// NewRequest builds a request for the nodes and edges of g. size returns the
// box of each node; nodes for which it returns a zero size fall back to the
// size already attached to the node.
func NewRequest(g *graph.Graph, size func(graph.Node) graph.Size, opts Options) Request {
	nodes := g.Nodes()
	edges := g.Edges()
	req := Request{
		Nodes:     make([]NodeBox, 0, len(nodes)),
		Edges:     make([]Link, 0, len(edges)),
		Direction: TopBottom,
		RankSep:   opts.RankSep,
		NodeSep:   opts.NodeSep,
		MarginX:   opts.MarginX,
		MarginY:   opts.MarginY,
	}
	for _, n := range nodes {
		s := n.Size
		if size != nil {
			if got := size(n); got != (graph.Size{}) {
				s = got
			}
		}
		req.Nodes = append(req.Nodes, NodeBox{ID: n.ID, Width: s.Width, Height: s.Height})
	}
	for _, e := range edges {
		req.Edges = append(req.Edges, Link{Source: e.Source, Target: e.Target})
	}
	return req
}

// Sizes returns the node boxes of req keyed by id.
func (r Request) Sizes() map[string]graph.Size {
	out := make(map[string]graph.Size, len(r.Nodes))
	for _, n := range r.Nodes {
		out[n.ID] = graph.Size{Width: n.Width, Height: n.Height}
	}
	return out
}

// Apply positions g with the result of running engine on req.
func Apply(ctx context.Context, engine Engine, g *graph.Graph, req Request) (*graph.Graph, Result, error) {
	res, err := engine.Layout(ctx, req)
	if err != nil {
		return nil, Result{}, fmt.Errorf("%s layout: %w", engine.Name(), err)
	}
	return g.WithGeometry(req.Sizes(), res.Positions), res, nil
}

// validate checks the request shape shared by all engines: a supported
// direction, unique positive-size nodes and edges between known nodes.
func (r Request) validate() error {
	if r.Direction != "" && r.Direction != TopBottom {
		return errors.New(errors.ErrCodeUnsupported, "layout direction %q", r.Direction)
	}
	seen := make(map[string]struct{}, len(r.Nodes))
	for _, n := range r.Nodes {
		if _, dup := seen[n.ID]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate node %q in layout request", n.ID)
		}
		if n.Width <= 0 || n.Height <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "node %q has no size", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	for _, e := range r.Edges {
		if _, ok := seen[e.Source]; !ok {
			return errors.New(errors.ErrCodeUnknownNodeReference, "edge source %q not in layout request", e.Source)
		}
		if _, ok := seen[e.Target]; !ok {
			return errors.New(errors.ErrCodeUnknownNodeReference, "edge target %q not in layout request", e.Target)
		}
	}
	return nil
}
