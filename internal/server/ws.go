package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/pageviz/pkg/view"
	"github.com/matzehuels/pageviz/pkg/viewer"
)

const wsWriteTimeout = 10 * time.Second

// wsRequest is an incoming websocket message.
type wsRequest struct {
	Type   string `json:"type"` // "toggle", "search" or "expand_all"
	NodeID string `json:"node_id,omitempty"`
	Query  string `json:"query,omitempty"`
}

// wsMessage is an outgoing websocket message.
type wsMessage struct {
	Type    string           `json:"type"` // "graph", "search" or "error"
	Graph   *view.Projection `json:"graph,omitempty"`
	Matches *int             `json:"matches,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	u := &websocket.Upgrader{}
	if s.cfg.AllowAllOrigins {
		u.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return u
}

// handleWebSocket streams the visible graph of a document. The current graph
// is sent on connect and again after every change, whichever client made it.
// Clients may send toggle, search and expand_all requests on the same
// connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	updates, cancel := sess.Handle.Subscribe()
	defer cancel()

	// Only this goroutine writes to conn; the reader hands replies over.
	replies := make(chan wsMessage, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var req wsRequest
			if err := conn.ReadJSON(&req); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Debug("websocket read", "id", sess.ID, "err", err)
				}
				return
			}
			reply, ok := s.applyWS(r, sess.ID, sess.Handle, req)
			if !ok {
				continue
			}
			select {
			case replies <- reply:
			default:
			}
		}
	}()

	write := func(msg wsMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(msg)
	}
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case p, ok := <-updates:
			if !ok {
				return
			}
			if err := write(wsMessage{Type: "graph", Graph: &p}); err != nil {
				return
			}
		case msg := <-replies:
			if err := write(msg); err != nil {
				return
			}
		}
	}
}

// applyWS performs a client request. It returns a reply when the client
// should hear back beyond the graph update the change itself publishes.
func (s *Server) applyWS(r *http.Request, id string, h *viewer.Handle, req wsRequest) (wsMessage, bool) {
	switch req.Type {
	case "toggle":
		if h.ToggleCollapse(req.NodeID) {
			s.save(r, id)
		}
		return wsMessage{}, false
	case "expand_all":
		h.ExpandAll()
		s.save(r, id)
		return wsMessage{}, false
	case "search":
		n := h.SetSearchQuery(req.Query)
		s.save(r, id)
		return wsMessage{Type: "search", Matches: &n}, true
	default:
		return wsMessage{Type: "error", Error: "unknown message type: " + req.Type}, true
	}
}
