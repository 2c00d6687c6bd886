package pipeline

import (
	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/search"
	"github.com/matzehuels/pageviz/pkg/view"
	"github.com/matzehuels/pageviz/pkg/visibility"
)

// Project applies opts.Collapse and opts.Query to a positioned graph.
// Collapse ids that do not name a node with children are ignored.
func Project(g *graph.Graph, opts Options) view.Projection {
	var state visibility.State
	for _, id := range opts.Collapse {
		state.Set(g, id, true)
	}
	matched := search.Highlight(g.Nodes(), opts.Query)
	return view.Project(g, state.Hidden(g), matched, state.Collapsed())
}
