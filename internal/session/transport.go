package session

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/coreterm/coreterm"
)

// Server exposes a Manager's sessions over HTTP, in the shape of
// amantus-ai-vibetunnel's pkg/api.RawWebSocket handler: one upgraded
// connection per session, a read goroutine turning client messages into
// coreterm.KeyEvents, and the session's own broadcast channel feeding the
// write side.
type Server struct {
	manager  *Manager
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewServer builds a *mux.Router wired to manager's sessions.
func NewServer(manager *Manager, log *zap.Logger) *mux.Router {
	s := &Server{
		manager: manager,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	r := mux.NewRouter()
	r.HandleFunc("/sessions/{id}/ws", s.handleWebSocket).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/resize", s.handleResize).Methods(http.MethodPost)
	return r
}

// inboundMessage is the JSON envelope a client sends over the WebSocket.
// Exactly one of Key or Paste should be set.
type inboundMessage struct {
	Key   *clientKeyEvent `json:"key,omitempty"`
	Paste []byte          `json:"paste,omitempty"`
}

// clientKeyEvent mirrors coreterm.KeyEvent in a JSON-friendly shape; the
// Key field is the coreterm.Key int value as the client's key map already
// produces it.
type clientKeyEvent struct {
	Key       coreterm.Key       `json:"key"`
	Modifiers coreterm.Modifier  `json:"modifiers"`
	NumLock   bool               `json:"numLock"`
	Composed  []byte             `json:"composed,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sess, ok := s.manager.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.String("session", id), zap.Error(err))
		return
	}
	defer conn.Close()

	log := s.log.With(zap.String("session", id))
	out := sess.Subscribe(64)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for chunk := range out {
			if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Debug("websocket read closed", zap.Error(err))
			break
		}
		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("malformed client message", zap.Error(err))
			continue
		}
		s.dispatch(sess, msg)
	}

	<-done
}

func (s *Server) dispatch(sess *Session, msg inboundMessage) {
	switch {
	case msg.Key != nil:
		ev := coreterm.KeyEvent{
			Key:       msg.Key.Key,
			Modifiers: msg.Key.Modifiers,
			NumLock:   msg.Key.NumLock,
			Composed:  msg.Key.Composed,
		}
		if out := sess.Engine().HandleKey(ev); len(out) > 0 {
			sess.PTY().Write(out)
		}
	case len(msg.Paste) > 0:
		sess.PTY().Write(msg.Paste)
	}
}

type resizeRequest struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// handleResize updates the child's TIOCSWINSZ only. The Grid itself is
// fixed-size for the life of a session (spec §4.1 "Grid" — resize is out of
// scope), so this does not reshape the Engine; a client that wants a truly
// different grid size has to start a new session.
func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sess, ok := s.manager.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Rows <= 0 || req.Cols <= 0 {
		http.Error(w, "invalid resize request", http.StatusBadRequest)
		return
	}
	if err := sess.PTY().Resize(req.Cols, req.Rows); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
