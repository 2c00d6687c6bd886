package server

import (
	stderrors "errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/matzehuels/pageviz/pkg/errors"
	"github.com/matzehuels/pageviz/pkg/observability"
	"github.com/matzehuels/pageviz/pkg/session"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	if stderrors.Is(err, session.ErrNotFound) || stderrors.Is(err, session.ErrExpired) {
		return http.StatusNotFound
	}
	return errors.GetCode(err).HTTPStatus()
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		observability.HTTP().OnError(r.Context(), r.Method, r.Host, r.URL.Path, err)
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	resp := errorResponse{Error: errors.UserMessage(err)}
	if code := errors.GetCode(err); code != "" {
		resp.Code = string(code)
	}
	writeJSON(w, status, resp)
}
