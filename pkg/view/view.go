// Package view composes a positioned graph with collapse and search state
// into the render-ready projection shown to the user.
//
// Everything here is pure: [Project] takes the full graph and the current
// hidden, matched and collapsed sets and returns a fresh [Projection]
// without modifying its inputs. Sizing of node cards for the layout engine
// also lives here ([Sizer]) because card size is a display concern.
package view

import (
	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/palette"
	"github.com/matzehuels/pageviz/pkg/visibility"
)

// =============================================================================
// Sizing
// =============================================================================

const (
	// DefaultNodeWidth is the fixed width of every node card, in points.
	DefaultNodeWidth = 420.0

	// DefaultBaseHeight is the height of a card without a summary.
	DefaultBaseHeight = 120.0

	// DefaultSummaryHeight is added to cards that carry a summary, for the
	// summary toggle area.
	DefaultSummaryHeight = 40.0
)

// Sizer estimates the card size of a node from its content.
type Sizer struct {
	Width         float64 `json:"node_width" yaml:"node_width"`
	BaseHeight    float64 `json:"base_height" yaml:"base_height"`
	SummaryHeight float64 `json:"summary_height" yaml:"summary_height"`
}

// DefaultSizer returns the standard card sizes.
func DefaultSizer() Sizer {
	return Sizer{
		Width:         DefaultNodeWidth,
		BaseHeight:    DefaultBaseHeight,
		SummaryHeight: DefaultSummaryHeight,
	}
}

// withDefaults fills zero fields.
func (s Sizer) withDefaults() Sizer {
	if s.Width <= 0 {
		s.Width = DefaultNodeWidth
	}
	if s.BaseHeight <= 0 {
		s.BaseHeight = DefaultBaseHeight
	}
	if s.SummaryHeight < 0 {
		s.SummaryHeight = 0
	}
	return s
}

// Size returns the card size of n.
func (s Sizer) Size(n graph.Node) graph.Size {
	s = s.withDefaults()
	h := s.BaseHeight
	if n.HasSummary {
		h += s.SummaryHeight
	}
	return graph.Size{Width: s.Width, Height: h}
}

// =============================================================================
// Projection
// =============================================================================

// Node is a visible node annotated with view state.
type Node struct {
	graph.Node
	IsHighlighted bool           `json:"is_highlighted"`
	IsCollapsed   bool           `json:"is_collapsed"`
	Colors        palette.Colors `json:"colors"`
	// HiddenCount is the number of descendants hidden below a collapsed node.
	HiddenCount int `json:"hidden_count,omitempty"`
}

// Projection is the visible subset of a graph ready for drawing.
type Projection struct {
	Nodes []Node       `json:"nodes"`
	Edges []graph.Edge `json:"edges"`

	// TotalNodes is the node count of the full graph.
	TotalNodes int `json:"total_nodes"`
	// MaxDepth is the depth of the deepest node of the full graph.
	MaxDepth int `json:"max_depth"`
	// MatchCount counts all matched nodes, visible or not.
	MatchCount int `json:"match_count"`
	// VisibleMatchCount counts matched nodes that are visible.
	VisibleMatchCount int `json:"visible_match_count"`

	// Width and Height bound the visible cards.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Project filters g down to the nodes not in hidden and annotates them.
// An edge is kept only when both of its endpoints are visible, so the result
// never contains a dangling edge. Nodes keep graph order.
func Project(g *graph.Graph, hidden, matched, collapsed visibility.Set) Projection {
	nodes := g.Nodes()
	p := Projection{
		Nodes:      make([]Node, 0, max(0, len(nodes)-len(hidden))),
		Edges:      make([]graph.Edge, 0, g.EdgeCount()),
		TotalNodes: len(nodes),
		MaxDepth:   g.MaxDepth(),
		MatchCount: len(matched),
	}

	var below map[string]int
	if len(collapsed) > 0 {
		below = descendantCounts(g, nodes)
	}

	for _, n := range nodes {
		if hidden.Has(n.ID) {
			continue
		}
		vn := Node{
			Node:          n,
			IsHighlighted: matched.Has(n.ID),
			IsCollapsed:   collapsed.Has(n.ID) && n.HasChildren,
			Colors:        palette.ForNode(n.Depth, n.IsLeaf),
		}
		if vn.IsCollapsed {
			vn.HiddenCount = below[n.ID]
		}
		if vn.IsHighlighted {
			p.VisibleMatchCount++
		}
		p.Width = max(p.Width, n.Position.X+n.Size.Width)
		p.Height = max(p.Height, n.Position.Y+n.Size.Height)
		p.Nodes = append(p.Nodes, vn)
	}

	for _, e := range g.Edges() {
		if hidden.Has(e.Source) || hidden.Has(e.Target) {
			continue
		}
		p.Edges = append(p.Edges, e)
	}
	return p
}

// descendantCounts returns the number of descendants of every node in one
// pass. nodes is in pre-order, so walking it backwards settles each child
// before its parent.
func descendantCounts(g *graph.Graph, nodes []graph.Node) map[string]int {
	counts := make(map[string]int, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		id := nodes[i].ID
		if parent, ok := g.Parent(id); ok {
			counts[parent] += counts[id] + 1
		}
	}
	return counts
}

// Node returns the visible node with the given id.
func (p Projection) Node(id string) (Node, bool) {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Highlighted returns the visible matched nodes in graph order.
func (p Projection) Highlighted() []Node {
	var out []Node
	for _, n := range p.Nodes {
		if n.IsHighlighted {
			out = append(out, n)
		}
	}
	return out
}
