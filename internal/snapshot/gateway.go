package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/metrics"
)

const readTimeout = 3 * time.Second

// Pinger is implemented by stores that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Gateway adapts a SnapshotStore for the session store.
type Gateway struct {
	store  domain.SnapshotStore
	writer *Writer
}

var _ domain.PersistenceGateway = (*Gateway)(nil)

func NewGateway(store domain.SnapshotStore, writer *Writer) *Gateway {
	return &Gateway{store: store, writer: writer}
}

// Store hands content to the background writer. It never blocks on I/O.
func (g *Gateway) Store(screenID domain.ScreenID, content domain.Content) {
	g.writer.Enqueue(screenID, content)
}

// Load returns the newest known content for screenID. Writes that are still queued
// win over what the store holds. A missing, unreadable or corrupt snapshot is
// reported as absent; the cause is logged.
func (g *Gateway) Load(ctx context.Context, screenID domain.ScreenID) (domain.Content, bool) {
	if content, ok := g.writer.Pending(screenID); ok {
		return content, true
	}

	content, err := g.Get(ctx, screenID)
	switch {
	case err == nil:
		return content, true
	case errors.Is(err, domain.ErrSnapshotNotFound):
		return nil, false
	case errors.Is(err, domain.ErrSnapshotCorrupt):
		slog.WarnContext(ctx, "Ignoring corrupt snapshot", "screen_id", screenID, "error", err)
		return nil, false
	default:
		slog.ErrorContext(ctx, "Failed to load snapshot", "screen_id", screenID, "error", err)
		return nil, false
	}
}

// Get reads straight from the store, with errors.
func (g *Gateway) Get(ctx context.Context, screenID domain.ScreenID) (domain.Content, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	content, err := g.store.Get(ctx, screenID)
	switch {
	case err == nil:
		metrics.SnapshotOpsTotal.WithLabelValues("get", "success").Inc()
	case errors.Is(err, domain.ErrSnapshotNotFound):
		metrics.SnapshotOpsTotal.WithLabelValues("get", "not_found").Inc()
	default:
		metrics.SnapshotOpsTotal.WithLabelValues("get", "error").Inc()
	}
	return content, err
}

// Flush waits for queued writes.
func (g *Gateway) Flush(ctx context.Context) error {
	return g.writer.Flush(ctx)
}

// Ping checks the backing store, if it knows how.
func (g *Gateway) Ping(ctx context.Context) error {
	if p, ok := g.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
