// Package backend opens the snapshot store selected by SNAPSHOT_BACKEND.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/database"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/platform/config"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/redis"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/snapshot"
)

// ErrListUnsupported is returned by List for stores that cannot enumerate keys.
var ErrListUnsupported = errors.New("snapshot backend cannot list screens")

// Lister is implemented by stores that can enumerate their screens.
type Lister interface {
	List(ctx context.Context) ([]domain.ScreenID, error)
}

// Backend is an opened snapshot store plus whatever must be closed with it.
type Backend struct {
	Name  string
	Store domain.SnapshotStore

	raw     domain.SnapshotStore
	closers []func()
}

// Open connects to the configured backend. Remote backends are wrapped in a
// circuit breaker; Postgres migrations run before Open returns.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{Name: cfg.SnapshotBackend}

	switch cfg.SnapshotBackend {
	case config.BackendFile:
		store, err := snapshot.NewFileStore(cfg.SnapshotDir)
		if err != nil {
			return nil, err
		}
		b.raw, b.Store = store, store

	case config.BackendMemory:
		store := snapshot.NewMemoryStore()
		b.raw, b.Store = store, store

	case config.BackendRedis:
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		// The client's own breaker hook already guards every command.
		store := redis.NewSnapshotStore(client, cfg.SnapshotKeyPrefix)
		b.raw, b.Store = store, store

	case config.BackendPostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		if err := database.RunMigrations(ctx, pool); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		repo := database.NewSnapshotRepo(pool)
		b.raw, b.Store = repo, snapshot.NewGuardedStore("postgres", repo)

	case config.BackendSQLite:
		store, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = store.Close() })
		b.raw, b.Store = store, snapshot.NewGuardedStore("sqlite", store)

	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
	}

	slog.Info("Snapshot backend ready", "backend", b.Name)
	return b, nil
}

// List enumerates stored screens, bypassing the circuit breaker.
func (b *Backend) List(ctx context.Context) ([]domain.ScreenID, error) {
	lister, ok := b.raw.(Lister)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrListUnsupported, b.Name)
	}
	return lister.List(ctx)
}

// Ping reports backend health for readiness checks.
func (b *Backend) Ping(ctx context.Context) error {
	if p, ok := b.Store.(snapshot.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases connections in reverse order of acquisition.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}
