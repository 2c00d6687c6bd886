// Package layouttest provides layout engines for tests.
package layouttest

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/layout"
)

// Stacked places every node in its own row, one below the other, in request
// order. It satisfies the layout contract for any request whose edges point
// forward in node order, which includes every pre-order tree.
type Stacked struct{}

// Name implements layout.Engine.
func (Stacked) Name() string { return "stacked" }

// Layout implements layout.Engine.
func (Stacked) Layout(_ context.Context, req layout.Request) (layout.Result, error) {
	res := layout.Result{Positions: make(map[string]graph.Point, len(req.Nodes))}
	if len(req.Nodes) == 0 {
		res.Width, res.Height = 2*req.MarginX, 2*req.MarginY
		return res, nil
	}
	y := req.MarginY
	for _, n := range req.Nodes {
		res.Positions[n.ID] = graph.Point{X: req.MarginX, Y: y}
		res.Width = max(res.Width, req.MarginX+n.Width)
		y += n.Height + req.RankSep
	}
	res.Width += req.MarginX
	res.Height = y - req.RankSep + req.MarginY
	return res, nil
}

// Failing is an engine that always returns Err.
type Failing struct {
	Err error
}

// Name implements layout.Engine.
func (Failing) Name() string { return "failing" }

// Layout implements layout.Engine.
func (f Failing) Layout(context.Context, layout.Request) (layout.Result, error) {
	return layout.Result{}, f.Err
}

// Recorder wraps an engine and records every request it receives.
type Recorder struct {
	Engine layout.Engine

	mu       sync.Mutex
	requests []layout.Request
}

// NewRecorder wraps engine. A nil engine defaults to Stacked.
func NewRecorder(engine layout.Engine) *Recorder {
	if engine == nil {
		engine = Stacked{}
	}
	return &Recorder{Engine: engine}
}

// Name implements layout.Engine.
func (r *Recorder) Name() string { return r.Engine.Name() }

// Layout implements layout.Engine.
func (r *Recorder) Layout(ctx context.Context, req layout.Request) (layout.Result, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()
	return r.Engine.Layout(ctx, req)
}

// Calls returns the number of Layout calls so far.
func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// Requests returns a copy of the recorded requests.
func (r *Recorder) Requests() []layout.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.requests)
}
