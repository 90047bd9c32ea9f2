package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/metrics"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/platform/retry"
	"github.com/jonboulle/clockwork"
)

const (
	writeTimeout   = 5 * time.Second
	maxAttempts    = 4
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 2 * time.Second
)

// Writer persists snapshots in the background.
//
// Each screen has at most one write in flight. Content enqueued while a write is
// running replaces whatever was still waiting, so a burst of syncs costs two
// writes at most and the last one always carries the newest content.
type Writer struct {
	store domain.SnapshotStore
	clock clockwork.Clock

	mu       sync.Mutex
	idle     *sync.Cond
	waiting  map[domain.ScreenID]domain.Content
	inflight map[domain.ScreenID]bool
	// latest is the newest content per screen that is not yet known to be durable.
	latest map[domain.ScreenID]domain.Content
	closed bool
}

func NewWriter(store domain.SnapshotStore, clock clockwork.Clock) *Writer {
	w := &Writer{
		store:    store,
		clock:    clock,
		waiting:  make(map[domain.ScreenID]domain.Content),
		inflight: make(map[domain.ScreenID]bool),
		latest:   make(map[domain.ScreenID]domain.Content),
	}
	w.idle = sync.NewCond(&w.mu)
	return w
}

// Enqueue schedules content to be written for screenID and returns immediately.
func (w *Writer) Enqueue(screenID domain.ScreenID, content domain.Content) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		slog.Warn("Snapshot writer closed, dropping write", "screen_id", screenID)
		metrics.SnapshotOpsTotal.WithLabelValues("put", "dropped").Inc()
		return
	}

	if _, superseded := w.waiting[screenID]; superseded {
		metrics.SnapshotWritesCoalesced.Inc()
	}
	w.waiting[screenID] = content
	w.latest[screenID] = content

	if !w.inflight[screenID] {
		w.inflight[screenID] = true
		go w.drain(screenID)
	}
}

// Pending returns content that was enqueued but may not be durable yet.
func (w *Writer) Pending(screenID domain.ScreenID) (domain.Content, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	content, ok := w.latest[screenID]
	return content, ok
}

func (w *Writer) drain(screenID domain.ScreenID) {
	for {
		w.mu.Lock()
		content, ok := w.waiting[screenID]
		if !ok {
			delete(w.inflight, screenID)
			delete(w.latest, screenID)
			w.idle.Broadcast()
			w.mu.Unlock()
			return
		}
		delete(w.waiting, screenID)
		w.mu.Unlock()

		w.write(screenID, content)
	}
}

func (w *Writer) write(screenID domain.ScreenID, content domain.Content) {
	start := w.clock.Now()
	policy := retry.Policy{
		MaxAttempts:    maxAttempts,
		InitialBackoff: initialBackoff,
		MaxBackoff:     maxBackoff,
		Clock:          w.clock,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Snapshot write failed, retrying", "screen_id", screenID, "attempt", attempt, "backoff", backoff, "error", err)
		},
	}

	err := retry.Do(context.Background(), policy, classifyWriteError, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()
		return w.store.Put(ctx, screenID, content)
	})

	metrics.SnapshotWriteDuration.Observe(w.clock.Since(start).Seconds())
	if err != nil {
		metrics.SnapshotOpsTotal.WithLabelValues("put", "error").Inc()
		slog.Error("Failed to persist snapshot", "screen_id", screenID, "error", err)
		return
	}
	metrics.SnapshotOpsTotal.WithLabelValues("put", "success").Inc()
	slog.Debug("Snapshot persisted", "screen_id", screenID, "bytes", len(content))
}

func classifyWriteError(err error) retry.Action {
	if errors.Is(err, context.Canceled) {
		return retry.Stop
	}
	return retry.Retry
}

// Flush blocks until every enqueued write has finished or ctx ends.
func (w *Writer) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.mu.Lock()
		for len(w.inflight) > 0 {
			w.idle.Wait()
		}
		w.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close rejects further writes and flushes what is queued.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return w.Flush(ctx)
}
