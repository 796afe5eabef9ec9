package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/wolfman30/vitrine/pkg/logging"
)

const recentToastLimit = 20

// Hub pushes toasts to the pages connected over websocket and keeps the
// latest toasts per page session for polling clients.
type Hub struct {
	logger *logging.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]struct{}
	conns    map[string]*websocket.Conn
	recent   map[string][]Toast
}

// NewHub creates a toast hub.
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		logger: logger,
		now:    time.Now,
		sessions: make(map[string]struct{}),
		conns:    make(map[string]*websocket.Conn),
		recent:   make(map[string][]Toast),
	}
}

// ForSession registers a page session and returns a Notifier bound to it.
// Toasts for the session are kept until Forget.
func (h *Hub) ForSession(sessionID string) Notifier {
	h.mu.Lock()
	h.sessions[sessionID] = struct{}{}
	h.mu.Unlock()
	return Func(func(_ context.Context, message string) error {
		h.Publish(sessionID, NewToast(message, h.now()))
		return nil
	})
}

// Publish records the toast and pushes it to the session's live connection.
// Toasts for unknown or forgotten sessions are dropped.
func (h *Hub) Publish(sessionID string, toast Toast) {
	h.mu.Lock()
	if _, known := h.sessions[sessionID]; !known {
		h.mu.Unlock()
		h.logger.Debug("notify: toast for unknown session dropped", "session_id", sessionID)
		return
	}
	list := append(h.recent[sessionID], toast)
	if len(list) > recentToastLimit {
		list = list[len(list)-recentToastLimit:]
	}
	h.recent[sessionID] = list
	conn, ok := h.conns[sessionID]
	h.mu.Unlock()

	if !ok {
		return
	}
	if err := websocket.JSON.Send(conn, toast); err != nil {
		h.logger.Debug("notify: toast push failed", "session_id", sessionID, "error", err)
	}
}

// Recent returns the toasts recorded for a session, oldest first.
func (h *Hub) Recent(sessionID string) []Toast {
	h.mu.RLock()
	defer h.mu.RUnlock()
	list := h.recent[sessionID]
	out := make([]Toast, len(list))
	copy(out, list)
	return out
}

// Forget drops everything held for a session and closes its connection.
func (h *Hub) Forget(sessionID string) {
	h.mu.Lock()
	conn, ok := h.conns[sessionID]
	delete(h.sessions, sessionID)
	delete(h.conns, sessionID)
	delete(h.recent, sessionID)
	h.mu.Unlock()
	if ok {
		_ = conn.Close()
	}
}

// ServeSession upgrades the request to a websocket streaming the session's toasts.
func (h *Hub) ServeSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, sessionID)
	}).ServeHTTP(w, r)
}

func (h *Hub) serveWS(conn *websocket.Conn, sessionID string) {
	h.mu.Lock()
	previous := h.conns[sessionID]
	h.conns[sessionID] = conn
	h.mu.Unlock()
	if previous != nil {
		_ = previous.Close()
	}
	defer func() {
		h.mu.Lock()
		if h.conns[sessionID] == conn {
			delete(h.conns, sessionID)
		}
		h.mu.Unlock()
	}()

	h.logger.Info("notify: toast stream opened", "session_id", sessionID)

	// The page only sends pings; any read error ends the stream.
	for {
		var msg struct {
			Type string `json:"type"`
		}
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("notify: toast stream closed", "session_id", sessionID, "error", err)
			return
		}
		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, map[string]string{"type": "pong"})
		}
	}
}
