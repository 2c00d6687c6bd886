package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pageviz/pkg/source"
	"github.com/matzehuels/pageviz/pkg/viewer"
	"github.com/matzehuels/pageviz/pkg/watch"
)

// exploreFlags holds the command-line flags for the explore command.
type exploreFlags struct {
	dir      string
	collapse string
	query    string
	watch    bool
	noCache  bool
}

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags exploreFlags

	cmd := &cobra.Command{
		Use:   "explore [outline.json]",
		Short: "Browse an outline interactively in the terminal",
		Long: `Browse an outline interactively in the terminal.

Move with the arrow keys, toggle a section with enter, search with /.
With --dir and no file argument, a document is picked from the directory
first. The file is reloaded when it changes on disk unless --watch=false.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeOutlines,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				if flags.dir == "" {
					return fmt.Errorf("explore needs a file argument or --dir")
				}
				picked, err := pickDocument(cmd.Context(), source.NewDir(flags.dir))
				if err != nil || picked == "" {
					return err
				}
				path = picked
			}
			return c.runExplore(cmd.Context(), path, flags)
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", "", "pick a document from this directory")
	cmd.Flags().StringVar(&flags.collapse, "collapse", "", "node ids to collapse initially, comma-separated")
	cmd.Flags().StringVar(&flags.query, "search", "", "initial search text")
	cmd.Flags().BoolVar(&flags.watch, "watch", true, "reload when the file changes")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

// pickDocument shows the document picker and returns the selected path, or
// "" when the user quit without choosing.
func pickDocument(ctx context.Context, dir *source.Dir) (string, error) {
	entries, err := dir.List(ctx)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("no .json documents in %s", dir.Root)
	}

	final, err := tea.NewProgram(NewDocumentListModel(entries), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", err
	}
	m := final.(DocumentListModel)
	if m.Selected == nil {
		return "", nil
	}
	return dir.Path(m.Selected.Key), nil
}

func (c *CLI) runExplore(ctx context.Context, path string, flags exploreFlags) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions(path)
	opts.Collapse = parseList(flags.collapse)
	opts.Query = flags.query

	h, err := viewer.Load(ctx, data, viewer.Options{Pipeline: opts, Runner: runner, Logger: c.Logger})
	if err != nil {
		return err
	}

	updates, cancel := h.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	p := tea.NewProgram(NewExplorerModel(h, updates), tea.WithAltScreen(), tea.WithContext(ctx))

	if flags.watch && path != "-" {
		// Log lines would corrupt the alternate screen; show them on the
		// status line instead.
		logger := log.NewWithOptions(statusWriter{p}, log.Options{Level: log.InfoLevel})
		go func() {
			if err := watch.Reload(ctx, path, h, logger); err != nil && ctx.Err() == nil {
				p.Send(statusMsg("watch: " + err.Error()))
			}
		}()
	}

	_, err = p.Run()
	return err
}

// statusWriter forwards log output to the explorer's status line.
type statusWriter struct {
	p *tea.Program
}

func (w statusWriter) Write(b []byte) (int, error) {
	w.p.Send(statusMsg(strings.TrimSpace(string(b))))
	return len(b), nil
}
