package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/backend"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/broadcast"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/platform/config"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/platform/logging"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/platform/version"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/relay"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/server"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/session"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/snapshot"
	"github.com/jonboulle/clockwork"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupBackend(cfg *config.Config) *backend.Backend {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	b, err := backend.Open(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open snapshot backend", "backend", cfg.SnapshotBackend, "error", err)
		os.Exit(1)
	}
	return b
}

func runGracefulShutdown(srv *server.Server, writer *snapshot.Writer) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		// Last syncs are still in the writer; give them a chance to land.
		if err := writer.Close(shutdownCtx); err != nil {
			slog.Error("Snapshot writer did not drain", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().String())

	snapshots := setupBackend(cfg)
	defer snapshots.Close()

	writer := snapshot.NewWriter(snapshots.Store, clock)
	gateway := snapshot.NewGateway(snapshots.Store, writer)

	broadcaster := broadcast.NewBroadcaster()
	store := session.NewStore(gateway, broadcaster)
	registry := session.NewRegistry(store)

	srv := server.NewServer(cfg, server.Deps{
		Relay:       relay.New(registry, store),
		Store:       store,
		Registry:    registry,
		Broadcaster: broadcaster,
		Clock:       clock,
		HealthChecks: []server.HealthCheck{
			{Name: "snapshot_backend", Check: snapshots.Ping},
		},
	})

	done := runGracefulShutdown(srv, writer)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
