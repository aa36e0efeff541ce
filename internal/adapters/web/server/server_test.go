package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lcalzada-xor/widsview/internal/adapters/storage"
	"github.com/lcalzada-xor/widsview/internal/adapters/web"
	"github.com/lcalzada-xor/widsview/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/widsview/internal/adapters/web/server"
	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/core/services/auth"
	"github.com/lcalzada-xor/widsview/internal/core/services/feed"
	"github.com/lcalzada-xor/widsview/internal/core/services/view"
)

type stack struct {
	handler    http.Handler
	controller *view.Controller
	auth       *auth.AuthService
	journal    *storage.Journal
	ws         *web.WSManager
}

// setupStack wires a real feed, controller, journal and gate behind the router.
func setupStack(t *testing.T) *stack {
	t.Helper()

	journal, err := storage.NewJournal()
	require.NoError(t, err)
	t.Cleanup(func() { journal.Close() })

	controller := view.NewController(feed.NewSimulator(feed.WithSeed(11)),
		view.WithInterval(time.Hour), view.WithObservers(journal))

	gate, err := auth.NewAuthService(auth.DefaultUsername, auth.DefaultPassword,
		auth.WithHashCost(bcrypt.MinCost),
		auth.WithGateListener(journal),
		auth.WithGateListener(controller))
	require.NoError(t, err)
	t.Cleanup(gate.Close)

	srv := server.NewServer(":0", server.Dependencies{
		Auth:    gate,
		View:    controller,
		Journal: journal,
	})
	controller.SetSubstrate(srv.WSManager)

	return &stack{handler: srv.Handler(), controller: controller, auth: gate, journal: journal, ws: srv.WSManager}
}

func (s *stack) do(t *testing.T, method, target string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *stack) login(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/login", domain.Credentials{Username: "admin", Password: "admin"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["token"]
}

func TestServer_HealthIsPublic(t *testing.T) {
	s := setupStack(t)
	rec := s.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","gate":"closed"}`, rec.Body.String())

	s.login(t)
	rec = s.do(t, http.MethodGet, "/healthz", nil, "")
	assert.JSONEq(t, `{"status":"ok","gate":"open"}`, rec.Body.String())
}

func TestServer_ProtectedRoutesNeedSession(t *testing.T) {
	s := setupStack(t)
	for _, path := range []string{"/api/view", "/api/networks", "/api/history", "/api/report.pdf", "/metrics", "/ws"} {
		rec := s.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	assert.False(t, s.controller.Mounted())
}

func TestServer_GateLifecycle(t *testing.T) {
	s := setupStack(t)

	rec := s.do(t, http.MethodPost, "/api/login", domain.Credentials{Username: "admin", Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
	assert.False(t, s.controller.Mounted())

	token := s.login(t)
	assert.True(t, s.controller.Mounted())

	rec = s.do(t, http.MethodGet, "/api/networks", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var nets struct {
		Networks []map[string]interface{} `json:"networks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nets))
	assert.Len(t, nets.Networks, 5)

	rec = s.do(t, http.MethodGet, "/api/history", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var history domain.History
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history.Ticks, 1)

	rec = s.do(t, http.MethodPost, "/api/logout", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, s.controller.Mounted())

	rec = s.do(t, http.MethodGet, "/api/networks", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_LogoutClosesWebSocket(t *testing.T) {
	s := setupStack(t)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	token := s.login(t)
	header := http.Header{"Cookie": []string{middleware.CookieName + "=" + token}}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	defer conn.Close()

	// view, snapshot and scene arrive once the socket is registered
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 3; i++ {
		_, _, err := conn.ReadMessage()
		require.NoError(t, err)
	}

	rec := s.do(t, http.MethodPost, "/api/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, s.controller.Mounted())

	for err == nil {
		_, _, err = conn.ReadMessage()
	}
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)

	// a new session does not revive the old socket
	s.login(t)
	conn.WriteJSON(map[string]interface{}{"type": "tab", "payload": map[string]string{"tab": "alerts"}})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, domain.TabNetworks, s.controller.State().Tab)
	assert.Equal(t, 0, s.ws.ClientCount())
}

func TestServer_ViewIntents(t *testing.T) {
	s := setupStack(t)
	token := s.login(t)

	rec := s.do(t, http.MethodPut, "/api/view/tab", map[string]string{"tab": "alerts"}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/view/tab", map[string]string{"tab": "map"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/view/selection", map[string]string{"bssid": "00:11:22:33:44:58"}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/view/selection", map[string]string{"bssid": "IoT-Network"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/pointer", domain.PointerEvent{Kind: domain.PointerHoverEnter, NodeID: "00:11:22:33:44:57"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var scene domain.Scene
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scene))
	require.NotNil(t, scene.Overlay)
	assert.Equal(t, "00:11:22:33:44:57", scene.Overlay.NodeID)

	rec = s.do(t, http.MethodGet, "/api/view", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary domain.ViewSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, domain.TabAlerts, summary.Tab)
	assert.Equal(t, "00:11:22:33:44:58", summary.SelectedNode)
	assert.Equal(t, "00:11:22:33:44:57", summary.HoveredNode)

	rec = s.do(t, http.MethodDelete, "/api/view/selection", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, s.controller.State().SelectedNode)
}

func TestServer_ReadOnlyProjections(t *testing.T) {
	s := setupStack(t)
	token := s.login(t)

	for _, path := range []string{"/api/snapshot", "/api/alerts", "/api/stats", "/api/topology", "/api/scene", "/api/me"} {
		rec := s.do(t, http.MethodGet, path, nil, token)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), path)
	}

	rec := s.do(t, http.MethodGet, "/api/topology", nil, token)
	var topo domain.Topology
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &topo))
	assert.Len(t, topo.Nodes, 5)
	assert.Len(t, topo.Edges, 3)

	rec = s.do(t, http.MethodGet, "/api/report.pdf", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = s.do(t, http.MethodGet, "/metrics", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/networks", nil, token)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_UnmountedViewAnswers503(t *testing.T) {
	authMock := new(web.MockAuthService)
	authMock.On("ValidateToken", mock.Anything, "tok").Return(&domain.Session{Token: "tok", Username: "admin"}, nil)

	viewMock := new(web.MockViewService)
	viewMock.On("Mounted").Return(false)

	srv := server.NewServer(":0", server.Dependencies{Auth: authMock, View: viewMock})
	req := httptest.NewRequest(http.MethodGet, "/api/networks", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	viewMock.AssertNotCalled(t, "State")

	// history is not registered without a journal
	req = httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: "tok"})
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_LoginIsRateLimited(t *testing.T) {
	s := setupStack(t)
	creds := domain.Credentials{Username: "admin", Password: "wrong"}
	for i := 0; i < 5; i++ {
		rec := s.do(t, http.MethodPost, "/api/login", creds, "")
		require.NotEqual(t, http.StatusTooManyRequests, rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/api/login", creds, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	srv := server.NewServer("127.0.0.1:0", server.Dependencies{Auth: new(web.MockAuthService), View: new(web.MockViewService)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
