// Package layout positions the nodes of an outline graph on a 2D plane.
//
// # Contract
//
// An [Engine] receives a [Request] describing node boxes and parent→child
// edges and returns a [Result] mapping every node id to the top-left corner
// of its box. Every engine must satisfy three properties, which [Verify]
// checks:
//
//   - Rank order: a node's y is strictly smaller than the y of each of its
//     descendants (top-to-bottom direction).
//   - No overlap: no two node boxes intersect.
//   - Determinism: the same request always yields the same positions.
//
// A Request is built fresh for every call with [NewRequest]; engines keep no
// state between calls and may be shared by concurrent callers.
//
// # Engines
//
// [Tidy] is a built-in layered tree layout: ranks are assigned by depth,
// each subtree gets its own horizontal band, and parents are centered over
// their children. It needs no external tooling and is the default.
//
// [Graphviz] delegates to the Graphviz dot algorithm through go-graphviz and
// reads the positions back from dot's plain output. It produces tighter
// drawings for wide outlines at the cost of running the embedded Graphviz
// runtime.
//
// # Defaults
//
// Spacing follows the outline viewer defaults: 100 points between ranks,
// 60 points between neighbouring boxes and a 40 point margin on every side.
//
// Test doubles live in [github.com/matzehuels/pageviz/pkg/layout/layouttest].
package layout
