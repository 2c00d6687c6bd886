// Package visibility decides which nodes of an outline graph are hidden by
// collapsed subtrees.
//
// Collapsing a node hides all of its descendants while the node itself stays
// visible. The hidden set is always recomputed from scratch from the set of
// collapsed ids, so nested collapses compose without bookkeeping: expanding
// an outer node reveals an inner collapsed node, whose own descendants stay
// hidden.
package visibility

import (
	"maps"
	"slices"
)

// Set is a set of node ids.
type Set map[string]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set is empty.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	if s == nil {
		return Set{}
	}
	return maps.Clone(s)
}

// Adjacency maps a node id to its direct children.
type Adjacency map[string][]string

// Hidden returns every id reachable through at least one edge from a
// collapsed id. Collapsed ids themselves are only hidden when they lie below
// another collapsed id. The children of each node are examined at most once,
// so the cost is linear in the number of edges no matter how many collapsed
// nodes are nested inside each other.
func Hidden(children Adjacency, collapsed Set) Set {
	hidden, _ := walk(children, collapsed)
	return hidden
}

// walk computes the hidden set and reports how many child entries it read.
func walk(children Adjacency, collapsed Set) (Set, int) {
	hidden := make(Set)
	expanded := make(Set, len(collapsed))
	queue := make([]string, 0, len(collapsed))
	for id := range collapsed {
		queue = append(queue, id)
	}

	steps := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if expanded.Has(cur) {
			continue
		}
		expanded[cur] = struct{}{}
		for _, c := range children[cur] {
			steps++
			if hidden.Has(c) {
				continue
			}
			hidden[c] = struct{}{}
			queue = append(queue, c)
		}
	}
	return hidden, steps
}

// Graph is the read-only view of a graph that State needs.
type Graph interface {
	Has(id string) bool
	Children(id string) []string
	Adjacency() map[string][]string
}

// State is the mutable collapse state of one displayed document.
// The zero value has nothing collapsed. State is not safe for concurrent use.
type State struct {
	collapsed Set
}

// Toggle flips the collapse state of id and reports whether anything changed.
// Unknown ids and leaves are ignored.
func (s *State) Toggle(g Graph, id string) bool {
	if !g.Has(id) || len(g.Children(id)) == 0 {
		return false
	}
	if s.collapsed.Has(id) {
		delete(s.collapsed, id)
		return true
	}
	if s.collapsed == nil {
		s.collapsed = make(Set)
	}
	s.collapsed[id] = struct{}{}
	return true
}

// Set collapses or expands id explicitly. Unknown ids and leaves are ignored.
func (s *State) Set(g Graph, id string, collapsed bool) bool {
	if s.collapsed.Has(id) == collapsed {
		return false
	}
	return s.Toggle(g, id)
}

// IsCollapsed reports whether id is collapsed.
func (s *State) IsCollapsed(id string) bool { return s.collapsed.Has(id) }

// Collapsed returns a copy of the collapsed ids.
func (s *State) Collapsed() Set { return s.collapsed.Clone() }

// Reset expands everything.
func (s *State) Reset() { s.collapsed = nil }

// Hidden computes the hidden ids of g for the current state.
func (s *State) Hidden(g Graph) Set {
	return Hidden(g.Adjacency(), s.collapsed)
}
