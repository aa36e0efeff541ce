package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lcalzada-xor/widsview/internal/adapters/reporting"
	"github.com/lcalzada-xor/widsview/internal/adapters/web"
	"github.com/lcalzada-xor/widsview/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/widsview/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/widsview/internal/core/ports"
)

// Dependencies are the collaborators the HTTP surface is built on.
// Journal, Vendors, Exporter and WSManager are optional.
type Dependencies struct {
	Auth      ports.AuthService
	View      ports.ViewService
	Journal   handlers.HistoryReader
	Vendors   ports.VendorResolver
	Exporter  handlers.ReportExporter
	WSManager *web.WSManager
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr        string
	AuthService ports.AuthService
	View        ports.ViewService
	WSManager   *web.WSManager

	AuthHandler     *handlers.AuthHandler
	ViewHandler     *handlers.ViewHandler
	SnapshotHandler *handlers.SnapshotHandler
	HistoryHandler  *handlers.HistoryHandler
	ReportHandler   *handlers.ReportHandler

	loginLimiter *middleware.RateLimiter
	srv          *http.Server
}

// NewServer creates a new web server.
func NewServer(addr string, deps Dependencies) *Server {
	ws := deps.WSManager
	if ws == nil {
		ws = web.NewWSManager(deps.View, nil)
	}
	if ws.Auth == nil {
		ws.Auth = deps.Auth
	}
	if notifier, ok := deps.Auth.(ports.SessionNotifier); ok {
		notifier.AddSessionListener(ws)
	}
	exporter := deps.Exporter
	if exporter == nil {
		exporter = reporting.NewPDFExporter(deps.Vendors)
	}

	s := &Server{
		Addr:        addr,
		AuthService: deps.Auth,
		View:        deps.View,
		WSManager:   ws,

		AuthHandler:     handlers.NewAuthHandler(deps.Auth),
		ViewHandler:     handlers.NewViewHandler(deps.View),
		SnapshotHandler: handlers.NewSnapshotHandler(deps.View, deps.Vendors),
		ReportHandler:   handlers.NewReportHandler(deps.View, deps.Journal, exporter),

		// 5 login attempts per minute per client
		loginLimiter: middleware.NewRateLimiter(5, time.Minute),
	}
	if deps.Journal != nil {
		s.HistoryHandler = handlers.NewHistoryHandler(deps.Journal)
	}
	return s
}

// Handler returns the instrumented route table.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(SetupRoutes(s), "widsview-server")
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Web Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.WSManager.Close()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web Server shutdown error: %v", err)
		}
	}()
	defer s.loginLimiter.Stop()

	log.Printf("Web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
