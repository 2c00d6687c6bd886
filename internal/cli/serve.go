package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pageviz/internal/server"
	"github.com/matzehuels/pageviz/pkg/cache"
	"github.com/matzehuels/pageviz/pkg/pipeline"
	"github.com/matzehuels/pageviz/pkg/session"
	"github.com/matzehuels/pageviz/pkg/source"
	"github.com/matzehuels/pageviz/pkg/viewer"
	"github.com/matzehuels/pageviz/pkg/watch"
)

// cleanupInterval is how often expired sessions are dropped.
const cleanupInterval = time.Minute

// serveFlags holds the command-line flags for the serve command.
type serveFlags struct {
	addr     string
	dir      string
	watch    bool
	allowAll bool
	noCache  bool
}

// serveCommand creates the serve command, which exposes documents over HTTP
// and WebSocket.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve [outline.json]",
		Short: "Serve outlines over HTTP and WebSocket",
		Long: `Serve outlines over HTTP and WebSocket.

Documents are uploaded with POST /api/documents or opened from a source:
--dir serves a directory of .json files; otherwise source.mongo_uri from the
config selects a MongoDB collection. A file argument is opened at startup and,
with --watch, reloaded whenever it changes.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeOutlines,
		RunE: func(cmd *cobra.Command, args []string) error {
			initial := ""
			if len(args) == 1 {
				initial = args[0]
			}
			return c.runServe(cmd.Context(), initial, flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&flags.dir, "dir", "", "serve documents from this directory")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "reload the file argument when it changes")
	cmd.Flags().BoolVar(&flags.allowAll, "allow-all-origins", false, "allow all CORS and WebSocket origins (development)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, initial string, flags serveFlags) error {
	logger := loggerFromContext(ctx)
	cfg := c.config()

	ch, err := c.newCache(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	keyer := cfg.Keyer()
	runner := pipeline.NewRunner(ch, keyer, logger)
	defer runner.Close()

	store, err := newSessionStore(cfg.Server.SessionDir)
	if err != nil {
		return err
	}
	registry := session.NewRegistry(store, viewer.Options{
		Pipeline: c.pipelineOptions(""),
		Runner:   runner,
		Logger:   logger,
	}, cfg.Server.SessionTTL)
	defer registry.Shutdown()

	src, closeSrc, err := c.openSource(ctx, flags.dir, ch, keyer)
	if err != nil {
		return err
	}
	defer closeSrc()

	srvCfg := server.Config{
		Addr:            cfg.Server.Addr,
		AllowAllOrigins: cfg.Server.AllowAllOrigins || flags.allowAll,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
	}
	if flags.addr != "" {
		srvCfg.Addr = flags.addr
	}
	srv := server.New(srvCfg, registry, src, logger)

	var initialID string
	if initial != "" {
		data, err := readInput(initial)
		if err != nil {
			return err
		}
		sess, err := registry.Open(ctx, initial, data)
		if err != nil {
			return err
		}
		initialID = sess.ID
		logger.Info("opened document", "id", sess.ID, "source", initial)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	g.Go(func() error { return cleanupLoop(ctx, registry, logger) })
	if initialID != "" && flags.watch && initial != "-" {
		g.Go(func() error { return watchSession(ctx, registry, initialID, initial, logger) })
	}

	return g.Wait()
}

// newSessionStore returns a file store when dir is set, otherwise an
// in-memory one.
func newSessionStore(dir string) (session.Store, error) {
	if dir == "" {
		return session.NewMemoryStore(), nil
	}
	store, err := session.NewFileStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return store, nil
}

// openSource selects the document source: a directory when dir is set,
// otherwise the configured MongoDB collection behind the cache. It returns a
// nil source when neither is configured.
func (c *CLI) openSource(ctx context.Context, dir string, ch cache.Cache, keyer cache.Keyer) (source.Source, func(), error) {
	if dir != "" {
		return source.NewDir(dir), func() {}, nil
	}
	sc := c.config().Source
	if sc.MongoURI == "" {
		return nil, func() {}, nil
	}
	m, err := source.NewMongo(ctx, source.MongoOptions{
		URI:        sc.MongoURI,
		Database:   sc.Database,
		Collection: sc.Collection,
	})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Close(closeCtx)
	}
	return source.NewCached(m, ch, keyer, cache.TTLDocument), closeFn, nil
}

func cleanupLoop(ctx context.Context, registry *session.Registry, logger *log.Logger) error {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := registry.Cleanup(ctx); err != nil {
				logger.Warn("session cleanup failed", "err", err)
			}
		}
	}
}

// watchSession replaces the document of session id whenever path changes.
func watchSession(ctx context.Context, registry *session.Registry, id, path string, logger *log.Logger) error {
	w, err := watch.New(path,
		watch.WithOnChange(func() {
			data, err := source.ReadFile(path)
			if err == nil {
				err = registry.Replace(ctx, id, data)
			}
			if err != nil {
				logger.Warn("reload failed", "path", path, "err", err)
				return
			}
			logger.Info("reloaded", "path", path, "session", id)
		}),
		watch.WithOnError(func(err error) {
			logger.Warn("watch", "path", path, "err", err)
		}),
	)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
