package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lcalzada-xor/widsview/internal/adapters/web/middleware"
)

// SetupRoutes builds the route table.
func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		gate := "closed"
		if s.AuthService.IsOpen() {
			gate = "open"
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","gate":%q}`, gate)
	}).Methods(http.MethodGet)

	// Public API
	r.Handle("/api/login", middleware.RateLimitMiddleware(s.loginLimiter)(http.HandlerFunc(s.AuthHandler.HandleLogin))).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", s.AuthHandler.HandleLogout).Methods(http.MethodPost)

	// Protected API
	auth := middleware.AuthMiddleware(s.AuthService)
	protect := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}
	// core endpoints additionally need the view to be mounted
	mounted := middleware.MountedMiddleware(s.View)
	protectCore := func(h http.HandlerFunc) http.Handler {
		return auth(mounted(h))
	}

	r.Handle("/api/me", protect(s.AuthHandler.HandleMe)).Methods(http.MethodGet)

	r.Handle("/api/view", protectCore(s.ViewHandler.HandleGetView)).Methods(http.MethodGet)
	r.Handle("/api/view/tab", protectCore(s.ViewHandler.HandleSelectTab)).Methods(http.MethodPut)
	r.Handle("/api/view/selection", protectCore(s.ViewHandler.HandleSelectNode)).Methods(http.MethodPut)
	r.Handle("/api/view/selection", protectCore(s.ViewHandler.HandleClearSelection)).Methods(http.MethodDelete)
	r.Handle("/api/pointer", protectCore(s.ViewHandler.HandlePointer)).Methods(http.MethodPost)

	r.Handle("/api/snapshot", protectCore(s.SnapshotHandler.HandleSnapshot)).Methods(http.MethodGet)
	r.Handle("/api/networks", protectCore(s.SnapshotHandler.HandleNetworks)).Methods(http.MethodGet)
	r.Handle("/api/alerts", protectCore(s.SnapshotHandler.HandleAlerts)).Methods(http.MethodGet)
	r.Handle("/api/stats", protectCore(s.SnapshotHandler.HandleStats)).Methods(http.MethodGet)
	r.Handle("/api/topology", protectCore(s.SnapshotHandler.HandleTopology)).Methods(http.MethodGet)
	r.Handle("/api/scene", protectCore(s.SnapshotHandler.HandleScene)).Methods(http.MethodGet)

	if s.HistoryHandler != nil {
		r.Handle("/api/history", protect(s.HistoryHandler.HandleGetHistory)).Methods(http.MethodGet)
	}
	r.Handle("/api/report.pdf", protectCore(s.ReportHandler.HandleGenerateReport)).Methods(http.MethodGet)

	// WebSocket substrate
	r.Handle("/ws", protect(s.WSManager.HandleWebSocket)).Methods(http.MethodGet)

	// Metrics endpoint (protected - requires authentication)
	r.Handle("/metrics", protect(promhttp.Handler().ServeHTTP)).Methods(http.MethodGet)

	return r
}
