package graph

import (
	stderrors "errors"
	"slices"

	"github.com/matzehuels/pageviz/pkg/errors"
)

var (
	// ErrDuplicateNodeID is reported by [Graph.Validate] when two nodes share
	// an identifier. A built graph never contains one; seeing it means the
	// allocator was misused.
	ErrDuplicateNodeID = stderrors.New("duplicate node ID")

	// ErrDuplicateEdgeID is reported by [Graph.Validate] when two edges share
	// an identifier.
	ErrDuplicateEdgeID = stderrors.New("duplicate edge ID")

	// ErrInvalidEdgeEndpoint is reported by [Graph.Validate] when an edge
	// references a node that does not exist.
	ErrInvalidEdgeEndpoint = stderrors.New("invalid edge endpoint")

	// ErrNotATree is reported by [Graph.Validate] when the graph does not
	// have exactly one root or a node has more than one parent.
	ErrNotATree = stderrors.New("graph is not a tree")
)

// Graph is the flattened, immutable outline graph.
//
// Nodes are kept in pre-order. The zero value is an empty graph; use [Build]
// or [New] to obtain a populated one.
type Graph struct {
	nodes    []Node
	edges    []Edge
	index    map[string]int      // node id -> position in nodes
	children map[string][]string // node id -> child ids in document order
	parent   map[string]string   // node id -> parent id
	maxDepth int
}

// New assembles a graph from already flattened nodes and edges.
// The slices are copied. New does not check structure; call [Graph.Validate]
// for graphs that did not come from [Build].
func New(nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		nodes:    slices.Clone(nodes),
		edges:    slices.Clone(edges),
		index:    make(map[string]int, len(nodes)),
		children: make(map[string][]string),
		parent:   make(map[string]string, len(nodes)),
	}
	for i, n := range g.nodes {
		if _, dup := g.index[n.ID]; !dup {
			g.index[n.ID] = i
		}
		if n.Depth > g.maxDepth {
			g.maxDepth = n.Depth
		}
	}
	for _, e := range g.edges {
		g.children[e.Source] = append(g.children[e.Source], e.Target)
		if _, ok := g.parent[e.Target]; !ok {
			g.parent[e.Target] = e.Source
		}
	}
	return g
}

// =============================================================================
// Accessors
// =============================================================================

// Nodes returns a copy of all nodes in pre-order.
func (g *Graph) Nodes() []Node { return slices.Clone(g.nodes) }

// Edges returns a copy of all edges in creation order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes, including the root.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// MaxDepth returns the depth of the deepest node. 0 for a root-only graph.
func (g *Graph) MaxDepth() int { return g.maxDepth }

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Has reports whether id names a node of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Children returns the direct children of id in document order.
// The returned slice must not be modified.
func (g *Graph) Children(id string) []string { return g.children[id] }

// Parent returns the parent of id. ok is false for the root and unknown ids.
func (g *Graph) Parent(id string) (parent string, ok bool) {
	parent, ok = g.parent[id]
	return parent, ok
}

// Root returns the synthetic document root.
func (g *Graph) Root() (Node, bool) {
	for _, n := range g.nodes {
		if n.IsRoot {
			return n, true
		}
	}
	return Node{}, false
}

// Adjacency returns the parent→children map, keyed by node id.
// The map is shared with the graph and must be treated as read-only.
func (g *Graph) Adjacency() map[string][]string { return g.children }

// =============================================================================
// Validation
// =============================================================================

// Validate checks the structural invariants of the graph: unique ids, edges
// that reference existing nodes, exactly one root without a parent, and
// exactly one parent for every other node. Leaf flags must agree with the
// edge set.
//
// Failures are reported as UNKNOWN_NODE_REFERENCE errors wrapping one of the
// sentinel errors of this package.
func (g *Graph) Validate() error {
	seen := make(map[string]struct{}, len(g.nodes))
	for _, n := range g.nodes {
		if _, dup := seen[n.ID]; dup {
			return invariant(ErrDuplicateNodeID, "node %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}

	edgeIDs := make(map[string]struct{}, len(g.edges))
	incoming := make(map[string]int, len(g.nodes))
	for _, e := range g.edges {
		if _, dup := edgeIDs[e.ID]; dup {
			return invariant(ErrDuplicateEdgeID, "edge %q", e.ID)
		}
		edgeIDs[e.ID] = struct{}{}
		if !g.Has(e.Source) {
			return invariant(ErrInvalidEdgeEndpoint, "edge %q: source %q", e.ID, e.Source)
		}
		if !g.Has(e.Target) {
			return invariant(ErrInvalidEdgeEndpoint, "edge %q: target %q", e.ID, e.Target)
		}
		incoming[e.Target]++
	}

	roots := 0
	for _, n := range g.nodes {
		switch {
		case n.IsRoot:
			roots++
			if incoming[n.ID] != 0 {
				return invariant(ErrNotATree, "root %q has a parent", n.ID)
			}
		case incoming[n.ID] != 1:
			return invariant(ErrNotATree, "node %q has %d parents", n.ID, incoming[n.ID])
		}
		if hasOut := len(g.children[n.ID]) > 0; hasOut != n.HasChildren || n.IsLeaf == n.HasChildren {
			return invariant(ErrNotATree, "node %q: leaf flags disagree with edges", n.ID)
		}
	}
	if len(g.nodes) > 0 && roots != 1 {
		return invariant(ErrNotATree, "found %d roots", roots)
	}
	return nil
}

func invariant(sentinel error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeUnknownNodeReference, sentinel, format, args...)
}
