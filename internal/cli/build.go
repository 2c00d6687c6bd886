package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pageviz/pkg/graph"
)

// buildCommand creates the build command, which loads and lays out an outline
// and reports what it contains.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		output  string
		engine  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "build [outline.json]",
		Short: "Build and lay out an outline graph",
		Long: `Build and lay out an outline graph.

The build command flattens the outline into one node per section plus a root
for the document, computes the layout and prints node, edge and depth counts.
With --output the positioned graph is written as JSON.

Use "-" to read the outline from stdin.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeOutlines,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], engine, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the positioned graph as JSON")
	cmd.Flags().StringVar(&engine, "engine", "", "layout engine: tidy (default), graphviz")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, input, engine, output string, noCache bool) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions(input)
	if engine != "" {
		opts.Layout.Engine = engine
	}

	done := timed(c.Logger, "Built "+input)
	g, hash, buildHit, err := runner.BuildWithCacheInfo(ctx, data, opts)
	if err != nil {
		return fmt.Errorf("build %s: %w", input, err)
	}
	positioned, _, layoutHit, err := runner.LayoutWithCacheInfo(ctx, g, hash, opts)
	if err != nil {
		return fmt.Errorf("layout %s: %w", input, err)
	}
	done()

	root, _ := positioned.Root()
	c.printSuccess("%s", root.Title)
	c.printKeyValue("Nodes", strconv.Itoa(positioned.NodeCount()))
	c.printKeyValue("Edges", strconv.Itoa(positioned.EdgeCount()))
	c.printKeyValue("Max depth", strconv.Itoa(positioned.MaxDepth()))
	c.printKeyValue("Leaves", strconv.Itoa(countLeaves(positioned)))
	c.printStats(graphStats{
		nodes:  positioned.NodeCount(),
		edges:  positioned.EdgeCount(),
		depth:  positioned.MaxDepth(),
		cached: buildHit && layoutHit,
	})

	if output != "" {
		if err := graph.WriteGraphFile(positioned, output); err != nil {
			return err
		}
		c.printFile(output)
	}

	c.printNextStep("Render", "pageviz render "+input)
	return nil
}

func countLeaves(g *graph.Graph) int {
	n := 0
	for _, node := range g.Nodes() {
		if node.IsLeaf && !node.IsRoot {
			n++
		}
	}
	return n
}
