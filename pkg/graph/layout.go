package graph

import "slices"

// =============================================================================
// Geometry
// =============================================================================

// WithGeometry returns a copy of g with sizes and positions attached.
// Nodes missing from a map keep their current value. The receiver is not
// modified.
func (g *Graph) WithGeometry(sizes map[string]Size, positions map[string]Point) *Graph {
	nodes := slices.Clone(g.nodes)
	for i := range nodes {
		if s, ok := sizes[nodes[i].ID]; ok {
			nodes[i].Size = s
		}
		if p, ok := positions[nodes[i].ID]; ok {
			nodes[i].Position = p
		}
	}
	return New(nodes, g.edges)
}

// Bounds returns the width and height of the smallest box, anchored at the
// origin, that contains every node card.
func (g *Graph) Bounds() (width, height float64) {
	for _, n := range g.nodes {
		width = max(width, n.Position.X+n.Size.Width)
		height = max(height, n.Position.Y+n.Size.Height)
	}
	return width, height
}
