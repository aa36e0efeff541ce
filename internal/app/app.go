package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/lcalzada-xor/widsview/internal/adapters/fingerprint"
	grpcadapter "github.com/lcalzada-xor/widsview/internal/adapters/grpc"
	"github.com/lcalzada-xor/widsview/internal/adapters/reporting"
	"github.com/lcalzada-xor/widsview/internal/adapters/storage"
	"github.com/lcalzada-xor/widsview/internal/adapters/web"
	webserver "github.com/lcalzada-xor/widsview/internal/adapters/web/server"
	"github.com/lcalzada-xor/widsview/internal/config"
	"github.com/lcalzada-xor/widsview/internal/core/services/auth"
	"github.com/lcalzada-xor/widsview/internal/core/services/feed"
	"github.com/lcalzada-xor/widsview/internal/core/services/topology"
	"github.com/lcalzada-xor/widsview/internal/core/services/view"
	"github.com/lcalzada-xor/widsview/internal/telemetry"
)

const (
	janitorInterval = time.Minute
	grpcStopTimeout = 5 * time.Second
)

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config      *config.Config
	Controller  *view.Controller
	AuthService *auth.AuthService
	Journal     *storage.Journal
	Vendors     *fingerprint.Resolver
	WSManager   *web.WSManager
	WebServer   *webserver.Server
	Monitor     *grpcadapter.Monitor
	GrpcServer  *grpc.Server
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// initVendors puts configured OUI overrides ahead of the IEEE registry.
func (app *Application) initVendors() error {
	overrides, err := fingerprint.NewStaticVendorRepository(app.Config.VendorOverrides)
	if err != nil {
		return err
	}
	repo := fingerprint.NewCompositeVendorRepository(overrides, fingerprint.NewRegistryVendorRepository())
	app.Vendors = fingerprint.NewResolver(repo, fingerprint.DefaultCacheSize)
	return nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()

	if err := app.initVendors(); err != nil {
		return err
	}

	journal, err := storage.NewJournal()
	if err != nil {
		return err
	}
	app.Journal = journal

	// 2. Core: feed, topology and the view that owns them
	app.initView()

	// 3. Substrates and observers
	app.initObservers()

	// 4. Authentication gate: the journal resets before the feed starts
	if err := app.initAuth(); err != nil {
		journal.Close()
		return err
	}

	// 5. Servers
	app.initServers()

	return nil
}

func (app *Application) initView() {
	simOpts := []feed.Option{}
	if app.Config.Seed != 0 {
		simOpts = append(simOpts, feed.WithSeed(app.Config.Seed))
	}
	builder := topology.NewBuilder(topology.WithEndpointMode(topology.EndpointMode(app.Config.EdgeMode)))

	app.Controller = view.NewController(feed.NewSimulator(simOpts...),
		view.WithInterval(app.Config.RefreshInterval),
		view.WithBuilder(builder),
		view.WithObservers(app.Journal),
	)
	slog.Debug("View controller ready", "interval", app.Config.RefreshInterval, "edge_mode", builder.Mode())
}

func (app *Application) initObservers() {
	origins := append(append([]string{}, web.DefaultAllowedOrigins...), app.Config.AllowedOrigins...)
	app.WSManager = web.NewWSManager(app.Controller, origins)
	app.Controller.SetSubstrate(app.WSManager)
	app.Controller.AddObserver(app.WSManager)
	app.Controller.AddViewObserver(app.WSManager)

	app.Monitor = grpcadapter.NewMonitor(app.Controller)
	app.Controller.AddObserver(app.Monitor)
	app.Controller.AddViewObserver(app.Monitor)
}

func (app *Application) initAuth() error {
	svc, err := auth.NewAuthService(app.Config.Username, app.Config.Password,
		auth.WithSessionTTL(app.Config.SessionTTL),
		auth.WithGateListener(app.Journal),
		auth.WithGateListener(app.Controller),
	)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	app.AuthService = svc
	return nil
}

func (app *Application) initServers() {
	app.WebServer = webserver.NewServer(app.Config.Addr, webserver.Dependencies{
		Auth:      app.AuthService,
		View:      app.Controller,
		Journal:   app.Journal,
		Vendors:   app.Vendors,
		Exporter:  reporting.NewPDFExporter(app.Vendors),
		WSManager: app.WSManager,
	})

	if app.Config.GRPCPort > 0 {
		app.GrpcServer = grpcadapter.NewGrpcServer(app.Monitor)
	}
}

// Run starts the application components and manages their execution lifecycle.
// The feed only runs while the authentication gate is open.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting widsview components...")

	// 1. Auxiliary Loops
	go app.AuthService.RunJanitor(ctx, janitorInterval)

	// 2. Servers
	errChan := make(chan error, 2)

	go func() {
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	if app.GrpcServer != nil {
		go app.runGrpc(ctx, errChan)
	}

	slog.Info("widsview ready, waiting for an operator to log in")

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Termination signal received")
	case runErr = <-errChan:
	}

	return errors.Join(runErr, app.cleanup())
}

func (app *Application) runGrpc(ctx context.Context, errChan chan<- error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", app.Config.GRPCPort))
	if err != nil {
		errChan <- fmt.Errorf("grpc listen error: %w", err)
		return
	}
	log.Printf("gRPC Server listening on %s", lis.Addr())

	go func() {
		<-ctx.Done()
		app.Monitor.Close()
		stopped := make(chan struct{})
		go func() {
			app.GrpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(grpcStopTimeout):
			app.GrpcServer.Stop()
		}
	}()

	if err := app.GrpcServer.Serve(lis); err != nil {
		errChan <- fmt.Errorf("grpc server error: %w", err)
	}
}

func (app *Application) cleanup() error {
	slog.Info("Cleaning up resources...")

	// closing every session tears the view and the journal down
	app.AuthService.Close()
	app.WSManager.Close()
	if app.Monitor != nil {
		app.Monitor.Close()
	}

	if err := app.Journal.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}
	return nil
}
