package graph

import "strconv"

// Allocator issues node identifiers in traversal order.
//
// It is a value type: Next returns the issued id together with the advanced
// allocator instead of mutating shared state, so two builds can never draw
// from the same counter.
type Allocator int

// Next returns the next node id and the allocator to use afterwards.
func (a Allocator) Next() (string, Allocator) {
	return "node-" + strconv.Itoa(int(a)), a + 1
}

// Issued reports how many ids have been handed out.
func (a Allocator) Issued() int { return int(a) }

// EdgeID derives the identifier of the edge source→target.
func EdgeID(source, target string) string {
	return "edge-" + source + "-" + target
}
