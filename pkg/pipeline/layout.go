package pipeline

import (
	"context"

	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/layout"
)

// =============================================================================
// Layout Generation
// =============================================================================

// Request builds the layout request for g: one box per node sized by
// opts.Sizer, spaced by opts.Layout.
func Request(g *graph.Graph, opts Options) layout.Request {
	return layout.NewRequest(g, opts.Sizer.Size, opts.Layout)
}

// ComputeLayout sizes and positions every node of g with the engine named in
// opts.Layout. The full graph is always laid out; collapsed views reuse the
// positions and only filter nodes.
func ComputeLayout(ctx context.Context, g *graph.Graph, opts Options) (*graph.Graph, layout.Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, layout.Result{}, err
	}
	engine, err := layout.New(opts.Layout.Engine)
	if err != nil {
		return nil, layout.Result{}, err
	}
	return layout.Apply(ctx, engine, g, Request(g, opts))
}
