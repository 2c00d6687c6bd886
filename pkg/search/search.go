// Package search highlights outline nodes whose title contains a query.
//
// Matching is a Unicode case-folded substring test on titles only; summaries
// and external ids are not searched. Search never changes which nodes are
// visible, it only marks them.
package search

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/visibility"
)

// Query is a normalized search query. The zero value matches nothing.
type Query struct {
	raw    string
	folded string
}

// NewQuery normalizes text. A query made only of white space matches
// nothing. Otherwise surrounding white space is kept and must appear in the
// title, so "a2 " does not match a title that ends in "A2".
func NewQuery(text string) Query {
	if strings.TrimSpace(text) == "" {
		return Query{raw: text}
	}
	return Query{raw: text, folded: fold(text)}
}

// String returns the query as typed.
func (q Query) String() string { return q.raw }

// IsEmpty reports whether the query matches nothing.
func (q Query) IsEmpty() bool { return q.folded == "" }

// Matches reports whether title contains the query, ignoring case.
func (q Query) Matches(title string) bool {
	if q.IsEmpty() {
		return false
	}
	return strings.Contains(fold(title), q.folded)
}

// fold applies full Unicode case folding. A fresh Caser is used per call
// because Casers are not safe for concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Highlight returns the ids of all nodes whose title matches text.
func Highlight(nodes []graph.Node, text string) visibility.Set {
	q := NewQuery(text)
	matched := make(visibility.Set)
	if q.IsEmpty() {
		return matched
	}
	for _, n := range nodes {
		if q.Matches(n.Title) {
			matched[n.ID] = struct{}{}
		}
	}
	return matched
}

// MatchCount is the number of matched nodes, whether visible or not.
func MatchCount(matched visibility.Set) int { return len(matched) }

// VisibleMatchCount is the number of matched nodes that are not hidden.
func VisibleMatchCount(matched, hidden visibility.Set) int {
	n := 0
	for id := range matched {
		if !hidden.Has(id) {
			n++
		}
	}
	return n
}

// Matches returns the matched nodes in graph order.
func Matches(nodes []graph.Node, matched visibility.Set) []graph.Node {
	var out []graph.Node
	for _, n := range nodes {
		if matched.Has(n.ID) {
			out = append(out, n)
		}
	}
	return out
}
