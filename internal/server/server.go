package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/broadcast"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/platform/config"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/relay"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/session"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/singleflight"
)

const shutdownCloseReason = "server shutting down"

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Relay        *relay.Relay
	Store        *session.Store
	Registry     *session.Registry
	Broadcaster  *broadcast.Broadcaster
	Clock        clockwork.Clock
	HealthChecks []HealthCheck
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	relay       *relay.Relay
	store       *session.Store
	registry    *session.Registry
	broadcaster *broadcast.Broadcaster
	admission   *Admission
	upgrader    websocket.Upgrader
	clock       clockwork.Clock

	snapshotReads singleflight.Group
	healthChecks  []HealthCheck
	startTime     time.Time
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	srv := &Server{
		echo:        e,
		config:      cfg,
		relay:       deps.Relay,
		store:       deps.Store,
		registry:    deps.Registry,
		broadcaster: deps.Broadcaster,
		admission: NewAdmission(AdmissionLimits{
			MaxConnections: int64(cfg.MaxWebSocketConnections),
			MaxPerIP:       cfg.MaxConnectionsPerIP,
			RatePerSecond:  cfg.ConnectionRatePerSecond,
			Burst:          cfg.ConnectionRateBurst,
		}, clock),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Displays and the dashboard run from file:// and app origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clock:        clock,
		healthChecks: deps.HealthChecks,
		startTime:    clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections, then closes every live WebSocket with
// a going-away frame. Hijacked connections are not tracked by net/http, so
// they are closed through the registry.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.broadcaster.CloseAll(s.registry.All(), shutdownCloseReason)
	if err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
