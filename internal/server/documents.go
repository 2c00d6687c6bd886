package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/matzehuels/pageviz/pkg/errors"
	"github.com/matzehuels/pageviz/pkg/pipeline"
	"github.com/matzehuels/pageviz/pkg/session"
	"github.com/matzehuels/pageviz/pkg/view"
)

// documentResponse describes an open document and what is visible of it.
type documentResponse struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Version   uint64          `json:"version"`
	Query     string          `json:"query,omitempty"`
	Collapsed []string        `json:"collapsed"`
	Graph     view.Projection `json:"graph"`
}

type collapseResponse struct {
	Changed   bool            `json:"changed"`
	Collapsed bool            `json:"collapsed"`
	Graph     view.Projection `json:"graph"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Matches int             `json:"matches"`
	Graph   view.Projection `json:"graph"`
}

func describe(sess *session.Session) documentResponse {
	h := sess.Handle
	return documentResponse{
		ID:        sess.ID,
		Source:    sess.Source,
		Version:   h.Version(),
		Query:     h.Query(),
		Collapsed: h.Collapsed(),
		Graph:     h.VisibleGraph(),
	}
}

// readDocument reads a request body of at most MaxUploadBytes.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read document")
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	return data, nil
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	if !session.ValidID(id) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "document %q not found", id))
		return nil, false
	}
	sess, err := s.registry.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

// save persists view state; failures only cost persistence, not the change.
func (s *Server) save(r *http.Request, id string) {
	if err := s.registry.Save(r.Context(), id); err != nil {
		s.logger.Warn("save session", "id", id, "err", err)
	}
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no document source configured"))
		return
	}
	entries, err := s.source.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"source": s.source.Name(), "documents": entries})
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var (
		name = r.URL.Query().Get("name")
		data []byte
		err  error
	)
	if key := r.URL.Query().Get("source"); key != "" {
		if s.source == nil {
			s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no document source configured"))
			return
		}
		data, err = s.source.Fetch(r.Context(), key)
		if name == "" {
			name = key
		}
	} else {
		data, err = s.readDocument(w, r)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if name == "" {
		name = "upload"
	}

	sess, err := s.registry.Open(r.Context(), name, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("opened document", "id", sess.ID, "source", name, "nodes", sess.Handle.Graph().NodeCount())
	writeJSON(w, http.StatusCreated, describe(sess))
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	data, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.registry.Replace(r.Context(), sess.ID, data); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, describe(sess))
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !session.ValidID(id) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "document %q not found", id))
		return
	}
	if err := s.registry.Close(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, describe(sess))
}

func (s *Server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	h := sess.Handle
	opts := h.Options()
	opts.Formats = []string{pipeline.FormatSVG}
	opts.ShowSummaries = r.URL.Query().Get("summaries") == "true"

	artifacts, _, err := s.registry.Runner().RenderWithCacheInfo(r.Context(), h.VisibleGraph(), h.Graph(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[pipeline.FormatSVG])
}

// handleCollapse toggles a node. ?state=collapsed or ?state=expanded sets it
// instead. Unknown ids and leaves leave the view unchanged.
func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	h := sess.Handle
	nodeID := chi.URLParam(r, "nodeID")

	var changed bool
	switch state := r.URL.Query().Get("state"); state {
	case "":
		changed = h.ToggleCollapse(nodeID)
	case "collapsed":
		changed = h.SetCollapsed(nodeID, true)
	case "expanded":
		changed = h.SetCollapsed(nodeID, false)
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "state must be collapsed or expanded, got %q", state))
		return
	}
	if changed {
		s.save(r, sess.ID)
	}
	writeJSON(w, http.StatusOK, collapseResponse{
		Changed:   changed,
		Collapsed: h.IsCollapsed(nodeID),
		Graph:     h.VisibleGraph(),
	})
}

func (s *Server) handleExpandAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Handle.ExpandAll()
	s.save(r, sess.ID)
	writeJSON(w, http.StatusOK, describe(sess))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	matches := sess.Handle.SetSearchQuery(req.Query)
	s.save(r, sess.ID)
	writeJSON(w, http.StatusOK, searchResponse{Matches: matches, Graph: sess.Handle.VisibleGraph()})
}
