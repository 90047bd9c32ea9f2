package relay

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/metrics"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/platform/correlation"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/session"
	"github.com/google/uuid"
)

const closeNormal = 1000

// Peer is a connected socket as the relay sees it.
type Peer interface {
	domain.Outbound
	// ReadMessage blocks for the next frame. Any error ends the connection.
	ReadMessage() ([]byte, error)
}

// Relay wires connections to the session store.
type Relay struct {
	registry *session.Registry
	store    *session.Store
	newID    func() string
}

func New(registry *session.Registry, store *session.Store) *Relay {
	return &Relay{
		registry: registry,
		store:    store,
		newID:    uuid.NewString,
	}
}

// Serve owns peer until it disconnects. It returns once the connection is closed
// and removed from its session.
func (r *Relay) Serve(ctx context.Context, query url.Values, peer Peer) {
	id := r.newID()
	ctx = correlation.WithConnectionID(ctx, id)

	h, err := session.ParseHandshake(query)
	if err != nil {
		r.reject(ctx, peer, err)
		return
	}

	conn := r.registry.Register(id, h, peer)
	switch h.Role {
	case domain.RoleProducer:
		r.store.AttachProducer(ctx, conn)
	case domain.RoleConsumer:
		r.store.AttachConsumer(ctx, conn)
	}

	defer func() {
		r.store.Detach(ctx, conn)
		r.registry.Unregister(conn)
		peer.Close(closeNormal, "")
		slog.InfoContext(ctx, "Connection closed", "screen_id", h.ScreenID, "role", h.Role)
	}()

	for {
		data, err := peer.ReadMessage()
		if err != nil {
			slog.DebugContext(ctx, "Read loop ended", "error", err)
			return
		}
		r.handleMessage(ctx, conn, data)
	}
}

func (r *Relay) reject(ctx context.Context, peer Peer, err error) {
	var hsErr *domain.HandshakeError
	if !errors.As(err, &hsErr) {
		slog.ErrorContext(ctx, "Unexpected handshake error", "error", err)
		peer.Close(closeNormal, "")
		return
	}

	reason, label := "Invalid role", "invalid_role"
	if hsErr.Code == domain.CloseMissingScreenID {
		reason, label = "Missing screenId parameter", "missing_screen_id"
	}

	metrics.HandshakeRejections.WithLabelValues(label).Inc()
	slog.WarnContext(ctx, "Rejecting connection", "code", hsErr.Code, "error", err)
	peer.Close(hsErr.Code, reason)
}

// handleMessage applies one inbound frame. Nothing a client sends can end the
// connection; bad frames are logged and dropped.
func (r *Relay) handleMessage(ctx context.Context, conn *domain.Connection, data []byte) {
	if conn.Role() != domain.RoleProducer {
		metrics.MalformedMessages.WithLabelValues("consumer_message").Inc()
		slog.DebugContext(ctx, "Ignoring message from consumer", "screen_id", conn.ScreenID(), "bytes", len(data))
		return
	}

	msg, err := domain.DecodeInbound(data)
	if err != nil {
		metrics.MalformedMessages.WithLabelValues("malformed").Inc()
		slog.WarnContext(ctx, "Error processing dashboard message", "screen_id", conn.ScreenID(), "error", err)
		return
	}

	if msg.Type != domain.MessageTypeSync {
		metrics.MalformedMessages.WithLabelValues("unknown_type").Inc()
		slog.DebugContext(ctx, "Ignoring message", "screen_id", conn.ScreenID(), "type", msg.Type)
		return
	}

	metrics.SyncsReceived.Inc()
	r.store.RecordContent(ctx, conn.ScreenID(), msg.Content)
}
