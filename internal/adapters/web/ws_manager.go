package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lcalzada-xor/widsview/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/core/ports"
	"github.com/lcalzada-xor/widsview/internal/telemetry"
)

// Message types pushed to and accepted from browser clients.
const (
	MsgSnapshot = "snapshot"
	MsgScene    = "scene"
	MsgView     = "view"
	MsgPointer  = "pointer"
	MsgTab      = "tab"
	MsgError    = "error"
)

const writeWait = 5 * time.Second

// DefaultAllowedOrigins are accepted besides same-origin requests.
var DefaultAllowedOrigins = []string{
	"http://localhost:8080",
	"http://127.0.0.1:8080",
	"http://[::1]:8080",
}

var errUnknownMessage = errors.New("unknown message type")

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// WSManager is the production rendering substrate: it ships scenes,
// snapshots and view changes to every connected browser and feeds pointer
// events back into the view. Each socket lives only as long as the session
// that opened it.
type WSManager struct {
	View ports.ViewService
	// Auth re-checks the socket's session before an intent is applied. Optional.
	Auth     ports.AuthService
	Clients  map[*websocket.Conn]*domain.Session
	mu       sync.Mutex
	upgrader websocket.Upgrader
}

// NewWSManager creates a manager. An empty origin list uses DefaultAllowedOrigins.
func NewWSManager(view ports.ViewService, allowedOrigins []string) *WSManager {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}
	m := &WSManager{
		View:    view,
		Clients: make(map[*websocket.Conn]*domain.Session),
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			log.Printf("WebSocket: Rejected origin: %s", origin)
			return false
		},
	}
	return m
}

func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	state := m.View.State()

	m.mu.Lock()
	m.Clients[conn] = session
	telemetry.WSClients.Inc()
	// bring the new client up to date before it sees any broadcast
	for _, msg := range []WSMessage{
		{Type: MsgView, Payload: state.Summary()},
		{Type: MsgSnapshot, Payload: state.Snapshot},
		{Type: MsgScene, Payload: state.Scene},
	} {
		if err := m.write(conn, msg); err != nil {
			m.mu.Unlock()
			m.remove(conn)
			return
		}
	}
	m.mu.Unlock()

	// the request context ends when this handler returns
	ctx := context.WithoutCancel(r.Context())

	// the session may have closed between the auth check and registration
	if m.Auth != nil {
		if _, err := m.Auth.ValidateToken(ctx, session.Token); err != nil {
			m.remove(conn)
			return
		}
	}

	log.Printf("WebSocket connected: user=%s", session.Username)

	go func() {
		defer func() {
			m.remove(conn)
			log.Printf("WebSocket disconnected: user=%s", session.Username)
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if m.Auth != nil {
				if _, err := m.Auth.ValidateToken(ctx, session.Token); err != nil {
					m.sendTo(conn, WSMessage{Type: MsgError, Payload: "session closed"})
					return
				}
			}
			if err := m.dispatch(ctx, data); err != nil {
				m.sendTo(conn, WSMessage{Type: MsgError, Payload: err.Error()})
			}
		}
	}()
}

// dispatch applies an inbound client message.
func (m *WSManager) dispatch(ctx context.Context, data []byte) error {
	var in inboundMessage
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	switch in.Type {
	case MsgPointer:
		var ev domain.PointerEvent
		if err := json.Unmarshal(in.Payload, &ev); err != nil {
			return err
		}
		return m.View.HandlePointer(ctx, ev)
	case MsgTab:
		var body struct {
			Tab domain.Tab `json:"tab"`
		}
		if err := json.Unmarshal(in.Payload, &body); err != nil {
			return err
		}
		return m.View.SelectTab(body.Tab)
	}
	return errUnknownMessage
}

// Draw implements ports.Substrate.
func (m *WSManager) Draw(ctx context.Context, scene domain.Scene) {
	m.broadcastMessage(WSMessage{Type: MsgScene, Payload: scene})
}

// OnSnapshot implements ports.SnapshotObserver.
func (m *WSManager) OnSnapshot(ctx context.Context, snap domain.Snapshot) {
	m.broadcastMessage(WSMessage{Type: MsgSnapshot, Payload: snap})
}

// OnViewChange implements ports.ViewObserver.
func (m *WSManager) OnViewChange(ctx context.Context, state domain.ViewState) {
	m.broadcastMessage(WSMessage{Type: MsgView, Payload: state.Summary()})
}

// OnSessionClosed implements ports.SessionListener: every socket opened by
// the session is closed with a policy violation frame.
func (m *WSManager) OnSessionClosed(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	closing := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session closed")
	for conn, session := range m.Clients {
		if session.Token != token {
			continue
		}
		conn.WriteControl(websocket.CloseMessage, closing, time.Now().Add(writeWait))
		conn.Close()
		delete(m.Clients, conn)
		telemetry.WSClients.Dec()
		log.Printf("WebSocket closed with its session: user=%s", session.Username)
	}
}

// ClientCount returns the number of connected clients.
func (m *WSManager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Clients)
}

// Close disconnects every client.
func (m *WSManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.Clients {
		conn.Close()
		delete(m.Clients, conn)
		telemetry.WSClients.Dec()
	}
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.Clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(m.Clients, conn)
			telemetry.WSClients.Dec()
		}
	}
}

func (m *WSManager) sendTo(conn *websocket.Conn, msg WSMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Clients[conn]; ok {
		m.write(conn, msg)
	}
}

// write must be called with mu held; gorilla connections allow one writer.
func (m *WSManager) write(conn *websocket.Conn, msg WSMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func (m *WSManager) remove(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Clients[conn]; ok {
		delete(m.Clients, conn)
		telemetry.WSClients.Dec()
	}
	conn.Close()
}

var (
	_ ports.Substrate        = (*WSManager)(nil)
	_ ports.SnapshotObserver = (*WSManager)(nil)
	_ ports.ViewObserver     = (*WSManager)(nil)
	_ ports.SessionListener  = (*WSManager)(nil)
)
