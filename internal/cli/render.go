package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pageviz/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	output   string // output file (single format) or base path (multiple)
	formats  string // comma-separated output formats
	collapse string // comma-separated node ids to collapse
	query    string // search text to highlight
	engine   string // layout engine
	noCache  bool

	refresh    bool
	summaries  bool
	background string
	detailed   bool
}

// renderCommand creates the render command, which goes from an outline to
// rendered output in one step.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [outline.json]",
		Short: "Render the visible part of an outline",
		Long: `Render the visible part of an outline.

Nodes listed with --collapse hide their descendants; titles matching --search
are highlighted. Several formats can be written at once:

  pageviz render report.json -f svg,dot,json --collapse node-3 --search intro

Formats: ` + strings.Join(pipeline.FormatNames(), ", ") + `

Use -o - to write a single format to stdout.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeOutlines,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions(args[0])
			opts.Refresh = flags.refresh
			opts.DetailedDOT = flags.detailed
			if cmd.Flags().Changed("summaries") {
				opts.ShowSummaries = flags.summaries
			}
			if cmd.Flags().Changed("background") {
				opts.Background = flags.background
			}
			if flags.formats != "" {
				opts.Formats = parseFormats(flags.formats)
			}
			opts.Collapse = parseList(flags.collapse)
			opts.Query = flags.query
			if flags.engine != "" {
				opts.Layout.Engine = flags.engine
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s), comma-separated (default from config, svg)")
	cmd.Flags().StringVar(&flags.collapse, "collapse", "", "node ids to collapse, comma-separated")
	cmd.Flags().StringVar(&flags.query, "search", "", "highlight nodes whose title contains this text")
	cmd.Flags().StringVar(&flags.engine, "engine", "", "layout engine: tidy (default), graphviz")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&flags.summaries, "summaries", false, "print the first summary line on each card (svg)")
	cmd.Flags().StringVar(&flags.background, "background", "", `background color, "none" for transparent (svg)`)
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "include depth and page span in labels (dot)")
	registerRenderCompletions(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, flags renderFlags) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := c.renderSpinner(ctx, flags.output, opts.Formats)
	spinner.Start()
	result, err := runner.Execute(ctx, data, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	written, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    flags.output,
		stdout:    c.stdout,
	})
	if err != nil {
		return err
	}
	if flags.output == "-" {
		return nil
	}

	c.printSuccess("Rendered %d of %d nodes", result.Stats.Visible, result.Stats.NodeCount)
	for _, path := range written {
		c.printFile(path)
	}
	if opts.Query != "" {
		c.printDetail("%d matches for %q", result.Stats.Matches, opts.Query)
	}
	c.printStats(graphStats{
		nodes:   result.Stats.NodeCount,
		edges:   result.Stats.EdgeCount,
		visible: result.Stats.Visible,
		depth:   result.Stats.MaxDepth,
		cached:  result.CacheInfo.LayoutHit,
	})
	return nil
}
