// Package graphtest provides generators for property tests over outlines.
package graphtest

import (
	"fmt"

	"pgregory.net/rapid"

	"github.com/matzehuels/pageviz/pkg/outline"
)

// MaxDepth bounds the nesting of generated outlines.
const MaxDepth = 4

var (
	titles    = []string{"Introduction", "Method", "Results", "Appendix", "résumé", "ÉTUDE", ""}
	summaries = []string{"", "short", "a longer summary of the section"}
)

// Document draws a random well-formed outline with at most MaxDepth levels
// of sections below the document root.
func Document(t *rapid.T) *outline.Document {
	return &outline.Document{
		DocName:   rapid.SampledFrom([]string{"", "Report"}).Draw(t, "doc_name"),
		Structure: sections(t, 1, "structure"),
	}
}

func sections(t *rapid.T, depth int, label string) []*outline.Section {
	if depth > MaxDepth {
		return nil
	}
	n := rapid.IntRange(0, MaxDepth+1-depth).Draw(t, label)
	out := make([]*outline.Section, n)
	for i := range out {
		path := fmt.Sprintf("%s[%d]", label, i)
		out[i] = &outline.Section{
			Title:   rapid.SampledFrom(titles).Draw(t, path+".title"),
			Summary: rapid.SampledFrom(summaries).Draw(t, path+".summary"),
			Nodes:   sections(t, depth+1, path+".nodes"),
		}
	}
	return out
}

// Query draws a search query that sometimes matches generated titles.
func Query(t *rapid.T) string {
	return rapid.SampledFrom([]string{"", "  ", "intro", "RESULT", "é", "étude", "xyz", "a"}).Draw(t, "query")
}
