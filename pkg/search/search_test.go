package search

import (
	"slices"
	"testing"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"pgregory.net/rapid"

	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/graph/graphtest"
	"github.com/matzehuels/pageviz/pkg/visibility"
)

func nodes(titles ...string) []graph.Node {
	out := make([]graph.Node, len(titles))
	for i, t := range titles {
		out[i] = graph.Node{ID: string(rune('a' + i)), Title: t}
	}
	return out
}

func TestHighlight(t *testing.T) {
	ns := nodes("Introduction", "Method", "Results and Discussion", "Straße", "ÉTUDE", "")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "Empty", query: "", want: nil},
		{name: "Whitespace", query: "   \t", want: nil},
		{name: "NoMatch", query: "zebra", want: nil},
		{name: "CaseInsensitive", query: "INTRO", want: []string{"a"}},
		{name: "Substring", query: "d", want: []string{"a", "b", "c", "e"}},
		{name: "PaddingIsLiteral", query: "method ", want: nil},
		{name: "LeadingSpace", query: " and", want: []string{"c"}},
		{name: "UnicodeFold", query: "étude", want: []string{"e"}},
		{name: "FullFold", query: "STRASSE", want: []string{"d"}},
		{name: "Spaces", query: "and dis", want: []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Highlight(ns, tt.query).Sorted()
			if !slices.Equal(got, tt.want) {
				t.Errorf("Highlight(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestMatchCounts(t *testing.T) {
	ns := nodes("Alpha", "alphabet", "Beta")
	matched := Highlight(ns, "alpha")
	if MatchCount(matched) != 2 {
		t.Errorf("MatchCount = %d, want 2", MatchCount(matched))
	}
	hidden := visibility.NewSet("b")
	if got := VisibleMatchCount(matched, hidden); got != 1 {
		t.Errorf("VisibleMatchCount = %d, want 1", got)
	}
	if got := Matches(ns, matched); len(got) != 2 || got[0].Title != "Alpha" {
		t.Errorf("Matches = %+v", got)
	}
}

func TestQuery(t *testing.T) {
	if !NewQuery(" ").IsEmpty() {
		t.Error("blank query should be empty")
	}
	q := NewQuery(" Foo ")
	if q.String() != " Foo " {
		t.Errorf("String() = %q", q.String())
	}
	if q.Matches("") || q.Matches("xfoox") || !q.Matches("a FOO b") {
		t.Error("Matches misbehaves")
	}
	var zero Query
	if zero.Matches("anything") {
		t.Error("zero query must match nothing")
	}
}

func TestHighlightProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g, err := graph.Build(graphtest.Document(t))
		if err != nil {
			t.Fatal(err)
		}
		query := graphtest.Query(t)
		matched := Highlight(g.Nodes(), query)

		for id := range matched {
			if !g.Has(id) {
				t.Fatalf("matched unknown id %s", id)
			}
		}
		// Case of the query never matters.
		upper := Highlight(g.Nodes(), cases.Upper(language.Und).String(query))
		if !slices.Equal(matched.Sorted(), upper.Sorted()) {
			t.Fatalf("query %q: upper-casing changed the match set", query)
		}
	})
}
