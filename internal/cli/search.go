package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/search"
)

// searchFlags holds the command-line flags for the search command.
type searchFlags struct {
	json    bool
	noCache bool
}

// searchHit is one match in --json output.
type searchHit struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id,omitempty"`
	Title      string `json:"title"`
	Depth      int    `json:"depth"`
	Path       string `json:"path"`
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search [outline.json] [query]",
		Short: "List sections whose title contains a query",
		Long: `List sections whose title contains a query.

Matching is case-insensitive and Unicode aware. Collapsed state does not
matter here: every section is searched.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeOutlines,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd.Context(), args[0], args[1], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.json, "json", false, "print matches as JSON")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, input, query string, flags searchFlags) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, _, _, err := runner.BuildWithCacheInfo(ctx, data, c.pipelineOptions(input))
	if err != nil {
		return err
	}

	nodes := g.Nodes()
	hits := searchHits(g, search.Matches(nodes, search.Highlight(nodes, query)))

	if flags.json {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		c.printWarning("No sections match %q", query)
		return nil
	}
	c.printSuccess("%d matches for %q", len(hits), query)
	for _, h := range hits {
		line := strings.Repeat("  ", h.Depth) + h.Title
		if h.ExternalID != "" && h.ExternalID != graph.RootExternalID {
			line += StyleDim.Render(" (" + h.ExternalID + ")")
		}
		c.printDetail("%s", line)
	}
	return nil
}

func searchHits(g *graph.Graph, matches []graph.Node) []searchHit {
	hits := make([]searchHit, 0, len(matches))
	for _, n := range matches {
		hits = append(hits, searchHit{
			ID:         n.ID,
			ExternalID: n.ExternalID,
			Title:      n.Title,
			Depth:      n.Depth,
			Path:       titlePath(g, n.ID),
		})
	}
	return hits
}

// titlePath joins the titles from the root down to id.
func titlePath(g *graph.Graph, id string) string {
	var titles []string
	for {
		n, ok := g.Node(id)
		if !ok {
			break
		}
		titles = append(titles, n.Title)
		parent, ok := g.Parent(id)
		if !ok {
			break
		}
		id = parent
	}
	slices.Reverse(titles)
	return strings.Join(titles, " / ")
}
