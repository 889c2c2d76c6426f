package livehub

import (
	"encoding/json"
	"sync"
	"time"

	"AlertPulse/internal/domain/models"
	applogger "AlertPulse/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event is the envelope written to live sessions.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// BrowserNotification is the reduced payload emitted alongside critical
// records so clients can raise a system notification.
type BrowserNotification struct {
	Title              string `json:"title"`
	Body               string `json:"body"`
	Icon               string `json:"icon,omitempty"`
	Tag                string `json:"tag,omitempty"`
	RequireInteraction bool   `json:"require_interaction"`
}

type session struct {
	id     string
	userID string
	conn   *websocket.Conn
	send   chan []byte
	closed chan struct{}
	once   sync.Once
}

// Hub is the registry of active real-time sessions, keyed by connection id
// with an index from user id to connection ids for fan-out. Sessions are
// created on connect and removed on disconnect.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
	byUser   map[string]map[string]struct{}

	logger       *applogger.Logger
	sendBuffer   int
	writeTimeout time.Duration
	pingInterval time.Duration
}

type Option func(*Hub)

// WithSendBuffer sets the per-session outbound buffer.
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// WithPingInterval sets the keepalive ping period.
func WithPingInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.pingInterval = d
		}
	}
}

func New(logger *applogger.Logger, opts ...Option) *Hub {
	h := &Hub{
		sessions:     make(map[string]*session),
		byUser:       make(map[string]map[string]struct{}),
		logger:       logger,
		sendBuffer:   64,
		writeTimeout: 5 * time.Second,
		pingInterval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adopts an upgraded connection for a user and starts its write
// loop. Returns the connection id.
func (h *Hub) Register(userID string, conn *websocket.Conn) string {
	s := &session{
		id:     uuid.New().String(),
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, h.sendBuffer),
		closed: make(chan struct{}),
	}

	h.mu.Lock()
	h.sessions[s.id] = s
	if h.byUser[userID] == nil {
		h.byUser[userID] = make(map[string]struct{})
	}
	h.byUser[userID][s.id] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(s)
	go h.readLoop(s)

	h.logger.Info("live session connected",
		applogger.String("user_id", userID),
		applogger.String("conn_id", s.id))
	return s.id
}

// Unregister removes a session and closes its connection.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	s, ok := h.sessions[connID]
	if ok {
		delete(h.sessions, connID)
		if idx := h.byUser[s.userID]; idx != nil {
			delete(idx, connID)
			if len(idx) == 0 {
				delete(h.byUser, s.userID)
			}
		}
	}
	h.mu.Unlock()

	if ok {
		s.close()
		h.logger.Info("live session disconnected",
			applogger.String("user_id", s.userID),
			applogger.String("conn_id", connID))
	}
}

// HasSession reports whether the user has at least one active session.
func (h *Hub) HasSession(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID]) > 0
}

// SessionCount returns the number of active sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Emit delivers a record to every active session of the user. Fire and
// forget: slow sessions drop the frame rather than block the caller.
// Critical records additionally carry a browser_notification event.
func (h *Hub) Emit(userID string, rec *models.NotificationRecord) bool {
	frames := make([][]byte, 0, 2)
	b, err := json.Marshal(Event{Event: "notification", Data: rec})
	if err != nil {
		return false
	}
	frames = append(frames, b)

	if rec.Priority == models.PriorityCritical {
		bn, err := json.Marshal(Event{Event: "browser_notification", Data: BrowserNotification{
			Title:              rec.Title,
			Body:               rec.Message,
			Tag:                rec.GroupID,
			RequireInteraction: true,
		}})
		if err == nil {
			frames = append(frames, bn)
		}
	}

	h.mu.RLock()
	ids := make([]*session, 0, len(h.byUser[userID]))
	for id := range h.byUser[userID] {
		if s, ok := h.sessions[id]; ok {
			ids = append(ids, s)
		}
	}
	h.mu.RUnlock()

	delivered := false
	for _, s := range ids {
		for _, f := range frames {
			select {
			case s.send <- f:
				delivered = true
			default:
				// session too slow; drop on backpressure
			}
		}
	}
	return delivered
}

// Close tears down every session, abandoning in-flight frames.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*session)
	h.byUser = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

func (h *Hub) writeLoop(s *session) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.closed:
			return
		case b, ok := <-s.send:
			if !ok {
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				h.Unregister(s.id)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.Unregister(s.id)
				return
			}
		}
	}
}

// readLoop drains client frames so control messages are processed and
// detects disconnects.
func (h *Hub) readLoop(s *session) {
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			h.Unregister(s.id)
			return
		}
	}
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.closed)
		_ = s.conn.Close()
	})
}
