// Package notify implements the two notification planes of SPEC_FULL §4.7:
// persisted per-user rows (service.go) and a realtime WebSocket fan-out hub
// (hub.go).
package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/assetledger/backend/internal/logging"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is the wire shape every broadcast message takes.
type Event struct {
	EventType string `json:"event_type"`
	Payload   any    `json:"payload"`
}

// session is one connected client. userID is empty for an unauthenticated
// (anonymous) connection, which per §4.7 still receives broadcasts.
type session struct {
	id     string
	userID string
	conn   *websocket.Conn
	send   chan Event
}

// Hub is the process-wide session registry (§5: the one piece of shared
// mutable in-memory state besides the SQL pool). All critical sections are
// O(1) for register/remove and O(sessions) for broadcast.
type Hub struct {
	log *logging.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func NewHub(log *logging.Logger) *Hub {
	return &Hub{log: log, sessions: make(map[string]*session)}
}

// ServeWS upgrades the request and registers the connection under sessionID.
// userID is empty for anonymous connections (§4.7: unauth sessions see
// broadcasts only).
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithFields(map[string]interface{}{"session_id": sessionID}).WithError(err).Warn("websocket upgrade failed")
		return
	}

	s := &session{id: sessionID, userID: userID, conn: conn, send: make(chan Event, 32)}

	h.mu.Lock()
	h.sessions[sessionID] = s
	h.mu.Unlock()

	go h.sendPump(s)
	go h.receivePump(s)
}

func (h *Hub) remove(sessionID string) {
	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	if ok {
		delete(h.sessions, sessionID)
	}
	h.mu.Unlock()
	if ok {
		close(s.send)
	}
}

// receivePump reads frames only to detect disconnect and keep the
// connection's read deadline moving via pong handling; this hub does not
// accept inbound commands from clients (§4.7 is server -> client only).
func (h *Hub) receivePump(s *session) {
	defer func() {
		h.remove(s.id)
		s.conn.Close()
	}()
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) sendPump(s *session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case event, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			body, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, body); err != nil {
				h.remove(s.id)
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(s.id)
				return
			}
		}
	}
}

// Broadcast attempts delivery to every registered session; a session whose
// send buffer is full is dropped rather than blocking the broadcaster.
func (h *Hub) Broadcast(eventType string, payload any) {
	event := Event{EventType: eventType, Payload: payload}

	h.mu.Lock()
	targets := make([]*session, 0, len(h.sessions))
	for _, s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		select {
		case s.send <- event:
		default:
			h.remove(s.id)
		}
	}
}

// SendToUser delivers to every session registered under userID, used to
// push a just-created persisted notification in realtime.
func (h *Hub) SendToUser(userID string, eventType string, payload any) {
	if userID == "" {
		return
	}
	h.mu.Lock()
	targets := make([]*session, 0)
	for _, s := range h.sessions {
		if s.userID == userID {
			targets = append(targets, s)
		}
	}
	h.mu.Unlock()

	event := Event{EventType: eventType, Payload: payload}
	for _, s := range targets {
		select {
		case s.send <- event:
		default:
			h.remove(s.id)
		}
	}
}

// SessionCount reports the number of currently registered connections,
// used by the admin status endpoint.
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
