package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lcalzada-xor/widsview/internal/app"
	"github.com/lcalzada-xor/widsview/internal/config"
	"github.com/lcalzada-xor/widsview/internal/telemetry"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code once every deferred cleanup has run.
func run() int {
	// load config
	cfg := config.Load()

	// Setup Structured Logging
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize Tracing
	if cfg.Tracing {
		shutdownTracer, err := telemetry.InitTracer()
		if err != nil {
			slog.Error("Failed to init tracer", "error", err)
		} else {
			defer func() {
				if err := shutdownTracer(context.Background()); err != nil {
					slog.Error("Failed to shutdown tracer", "error", err)
				}
			}()
		}
	}

	// Initialize Application
	application, err := app.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}

	// Root Context with cancellation on Interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("widsview starting", "addr", cfg.Addr, "grpc_port", cfg.GRPCPort, "refresh", cfg.RefreshInterval)

	// Run Application
	if err := application.Run(ctx); err != nil {
		slog.Error("Application error", "error", err)
		return 1
	}
	return 0
}
