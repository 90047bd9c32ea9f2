package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/metrics"
	"github.com/sony/gobreaker"
)

// GuardedStore puts a circuit breaker in front of a remote store so a dead database
// turns into fast failures instead of every write waiting out its timeout.
type GuardedStore struct {
	next domain.SnapshotStore
	cb   *gobreaker.CircuitBreaker
}

var _ domain.SnapshotStore = (*GuardedStore)(nil)

// NewGuardedStore trips after 5 consecutive failures and lets a trial request through after 30s.
// A missing or corrupt snapshot is an answer, not a failure.
func NewGuardedStore(component string, next domain.SnapshotStore) *GuardedStore {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        component,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrSnapshotNotFound) || errors.Is(err, domain.ErrSnapshotCorrupt)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerStateChanges.WithLabelValues(name, to.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(component).Set(0)
	return &GuardedStore{next: next, cb: cb}
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func (g *GuardedStore) Put(ctx context.Context, screenID domain.ScreenID, content domain.Content) error {
	_, err := g.cb.Execute(func() (any, error) {
		return nil, g.next.Put(ctx, screenID, content)
	})
	return err
}

func (g *GuardedStore) Get(ctx context.Context, screenID domain.ScreenID) (domain.Content, error) {
	res, err := g.cb.Execute(func() (any, error) {
		return g.next.Get(ctx, screenID)
	})
	if err != nil {
		return nil, err
	}
	return res.(domain.Content), nil
}

// State exposes the breaker state for health reporting.
func (g *GuardedStore) State() gobreaker.State {
	return g.cb.State()
}

// Ping forwards to the wrapped store when it supports it.
func (g *GuardedStore) Ping(ctx context.Context) error {
	if p, ok := g.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
