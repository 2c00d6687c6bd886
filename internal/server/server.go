// Package server exposes open outline documents over HTTP.
//
// Every uploaded document becomes a session (see [session.Registry]) whose
// view state is changed through REST calls and pushed to websocket clients
// after each change.
//
//	POST   /api/documents                     upload outline JSON, or ?source=key
//	GET    /api/sources                       list documents of the configured source
//	GET    /api/documents/{id}/graph          visible graph as JSON
//	GET    /api/documents/{id}/graph.svg      visible graph as SVG
//	PUT    /api/documents/{id}                replace the document
//	POST   /api/documents/{id}/collapse/{nodeID}
//	PUT    /api/documents/{id}/search         {"query": "..."}
//	GET    /api/documents/{id}/ws             projection stream
//	DELETE /api/documents/{id}
//	GET    /healthz
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/pageviz/pkg/buildinfo"
	"github.com/matzehuels/pageviz/pkg/session"
	"github.com/matzehuels/pageviz/pkg/source"
)

// DefaultMaxUploadBytes bounds request bodies carrying a document.
const DefaultMaxUploadBytes = 10 << 20

// Config holds server configuration.
type Config struct {
	Addr            string
	AllowAllOrigins bool     // allow all CORS origins (dev mode)
	AllowedOrigins  []string // used when AllowAllOrigins is false
	MaxUploadBytes  int64
}

// Server serves the document API.
type Server struct {
	cfg      Config
	registry *session.Registry
	source   source.Source
	logger   *log.Logger

	router     chi.Router
	httpServer *http.Server
}

// New creates a server over registry. src may be nil, in which case
// documents can only be uploaded.
func New(cfg Config, registry *session.Registry, src source.Source, logger *log.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:      cfg,
		registry: registry,
		source:   src,
		logger:   logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}
	if len(s.cfg.AllowedOrigins) > 0 {
		corsOpts.AllowedOrigins = s.cfg.AllowedOrigins
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": s.registry.Len(),
			"build":    buildinfo.Get(),
		})
	})

	r.Get("/api/sources", s.handleListSources)
	r.Route("/api/documents", func(r chi.Router) {
		r.Post("/", s.handleOpen)
		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", s.handleReplace)
			r.Delete("/", s.handleClose)
			r.Get("/graph", s.handleGraph)
			r.Get("/graph.svg", s.handleGraphSVG)
			r.Post("/collapse/{nodeID}", s.handleCollapse)
			r.Post("/expand", s.handleExpandAll)
			r.Put("/search", s.handleSearch)
			r.Get("/ws", s.handleWebSocket)
		})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
