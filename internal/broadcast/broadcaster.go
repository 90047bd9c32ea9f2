package broadcast

import (
	"errors"
	"log/slog"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/metrics"
	"github.com/gorilla/websocket"
)

// Broadcaster encodes content once per call and queues it on every recipient.
// It keeps no state of its own; the session store decides who the recipients are.
type Broadcaster struct{}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Broadcast sends a contentUpdate to each recipient that is still open.
// Failures are per recipient and never abort the fan-out.
func (b *Broadcaster) Broadcast(screenID domain.ScreenID, recipients []*domain.Connection, content domain.Content) {
	data, err := domain.EncodeContentUpdate(content)
	if err != nil {
		slog.Error("Failed to marshal broadcast message", "screen_id", screenID, "error", err)
		return
	}

	delivered := 0
	var slow []*domain.Connection
	for _, conn := range recipients {
		if !conn.Ready() {
			metrics.SendsDropped.WithLabelValues("not_ready").Inc()
			continue
		}
		switch err := conn.Send(data); {
		case err == nil:
			delivered++
		case errors.Is(err, domain.ErrPeerBackpressure):
			metrics.SendsDropped.WithLabelValues("backpressure").Inc()
			slow = append(slow, conn)
		default:
			metrics.SendsDropped.WithLabelValues("closed").Inc()
		}
	}

	for _, conn := range slow {
		slog.Warn("Disconnecting slow client", "screen_id", screenID, "connection_id", conn.ID())
	}

	metrics.ContentUpdatesSent.WithLabelValues("broadcast").Add(float64(delivered))
	metrics.BroadcastFanout.Observe(float64(delivered))
	slog.Debug("Broadcast content", "screen_id", screenID, "recipients", len(recipients), "delivered", delivered)
}

// Deliver sends the catch-up frame to a single consumer.
func (b *Broadcaster) Deliver(conn *domain.Connection, content domain.Content) error {
	data, err := domain.EncodeContentUpdate(content)
	if err != nil {
		return err
	}
	if !conn.Ready() {
		metrics.SendsDropped.WithLabelValues("not_ready").Inc()
		return domain.ErrPeerClosed
	}
	if err := conn.Send(data); err != nil {
		reason := "closed"
		if errors.Is(err, domain.ErrPeerBackpressure) {
			reason = "backpressure"
		}
		metrics.SendsDropped.WithLabelValues(reason).Inc()
		return err
	}
	metrics.ContentUpdatesSent.WithLabelValues("catch_up").Inc()
	return nil
}

// CloseAll closes every connection with a going-away frame carrying reason.
// Used on graceful shutdown.
func (b *Broadcaster) CloseAll(conns []*domain.Connection, reason string) {
	for _, conn := range conns {
		conn.Close(websocket.CloseGoingAway, reason)
	}
	slog.Info("Closed all peers", "count", len(conns), "reason", reason)
}
