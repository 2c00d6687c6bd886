// Package cli implements the pageviz command-line interface.
//
// This package provides commands for building outline graphs, rendering them
// as diagrams, searching them, exploring them in the terminal and serving
// them over HTTP. The CLI is built using cobra and supports verbose logging
// via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - build: Load an outline and print graph statistics
//   - render: Write the visible graph as SVG, PNG, PDF, DOT, JSON or YAML
//   - search: List the sections whose title matches a query
//   - explore: Browse an outline interactively, reloading on file changes
//   - serve: Serve the document API
//   - cache: Manage the layout and render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/pageviz/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the logger shared by all commands. Pipeline stages log
// their summaries at info and their options at debug.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// timed starts a clock and returns a func that logs msg with the elapsed
// time, e.g. "Built report.json (1.234s)".
func timed(l *log.Logger, msg string) func() {
	start := time.Now()
	return func() {
		l.Infof("%s (%s)", msg, time.Since(start).Round(time.Millisecond))
	}
}

type loggerKey struct{}

// withLogger attaches l to ctx for commands that only receive a context.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
