package server

import (
	"context"
	"log/slog"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/broadcast"
	apperrors "github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/errors"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleWebSocket(c echo.Context) error {
	if !websocket.IsWebSocketUpgrade(c.Request()) {
		return apperrors.ValidationError("expected a WebSocket upgrade")
	}

	ip := c.RealIP()
	if ok, reason := s.admission.Acquire(ip); !ok {
		metrics.WebSocketConnectionsRejected.WithLabelValues(string(reason)).Inc()
		return admissionError(reason).WithField("remote_ip", ip)
	}
	defer s.admission.Release(ip)

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		slog.Debug("WebSocket upgrade failed", "remote_ip", ip, "error", err)
		return nil
	}
	metrics.WebSocketConnectionsTotal.Inc()

	peer := broadcast.NewPeer(conn, s.clock, s.config.WriteBufferSize, s.config.MaxMessageBytes)

	// The request context ends with the handler, and the relay must finish its
	// cleanup after the socket is gone.
	ctx := context.WithoutCancel(c.Request().Context())
	s.relay.Serve(ctx, c.QueryParams(), peer)
	return nil
}

func admissionError(reason LimitReason) *apperrors.Error {
	if reason == LimitReasonGlobal {
		return apperrors.UnavailableError("server at connection capacity", nil)
	}
	return apperrors.RateLimitedError("too many connections").WithField("reason", string(reason))
}
