package snapshot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedStore blocks every Put until release is closed and records what it wrote.
type gatedStore struct {
	*MemoryStore
	release chan struct{}
	started chan struct{}

	mu   sync.Mutex
	puts []string
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MemoryStore: NewMemoryStore(),
		release:     make(chan struct{}),
		started:     make(chan struct{}, 16),
	}
}

func (s *gatedStore) Put(ctx context.Context, screenID domain.ScreenID, content domain.Content) error {
	s.started <- struct{}{}
	<-s.release
	s.mu.Lock()
	s.puts = append(s.puts, string(content))
	s.mu.Unlock()
	return s.MemoryStore.Put(ctx, screenID, content)
}

func (s *gatedStore) written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.puts...)
}

// flakyStore fails the first n puts.
type flakyStore struct {
	*MemoryStore
	mu       sync.Mutex
	failures int
	attempts int
}

func (s *flakyStore) Put(ctx context.Context, screenID domain.ScreenID, content domain.Content) error {
	s.mu.Lock()
	s.attempts++
	fail := s.attempts <= s.failures
	s.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return s.MemoryStore.Put(ctx, screenID, content)
}

func flush(t *testing.T, w *Writer) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, w.Flush(ctx))
}

func TestWriter_PersistsInBackground(t *testing.T) {
	store := NewMemoryStore()
	w := NewWriter(store, clockwork.NewRealClock())

	w.Enqueue("S1", domain.Content(`{"v":1}`))
	flush(t, w)

	got, err := store.Get(context.Background(), "S1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got))

	_, pending := w.Pending("S1")
	assert.False(t, pending, "nothing is pending after a flush")
}

func TestWriter_CoalescesWhileWriteInFlight(t *testing.T) {
	store := newGatedStore()
	w := NewWriter(store, clockwork.NewRealClock())

	w.Enqueue("S1", domain.Content(`{"v":1}`))
	<-store.started

	w.Enqueue("S1", domain.Content(`{"v":2}`))
	w.Enqueue("S1", domain.Content(`{"v":3}`))

	pending, ok := w.Pending("S1")
	require.True(t, ok)
	assert.JSONEq(t, `{"v":3}`, string(pending))

	close(store.release)
	flush(t, w)

	assert.Equal(t, []string{`{"v":1}`, `{"v":3}`}, store.written())
	got, err := store.Get(context.Background(), "S1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":3}`, string(got))
}

func TestWriter_ScreensAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	w := NewWriter(store, clockwork.NewRealClock())

	for _, id := range []domain.ScreenID{"a", "b", "c"} {
		w.Enqueue(id, domain.Content(`"`+string(id)+`"`))
	}
	flush(t, w)

	for _, id := range []domain.ScreenID{"a", "b", "c"} {
		got, err := store.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, `"`+string(id)+`"`, string(got))
	}
}

func TestWriter_RetriesWithBackoff(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	store := &flakyStore{MemoryStore: NewMemoryStore(), failures: 2}
	w := NewWriter(store, fakeClock)

	w.Enqueue("S1", domain.Content(`{"v":1}`))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, fakeClock.BlockUntilContext(ctx, 1))
	fakeClock.Advance(initialBackoff)
	require.NoError(t, fakeClock.BlockUntilContext(ctx, 1))
	fakeClock.Advance(2 * initialBackoff)

	flush(t, w)

	got, err := store.Get(context.Background(), "S1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got))
	assert.Equal(t, 3, store.attempts)
}

func TestWriter_GivesUpAfterMaxAttempts(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	store := &flakyStore{MemoryStore: NewMemoryStore(), failures: 100}
	w := NewWriter(store, fakeClock)

	w.Enqueue("S1", domain.Content(`{"v":1}`))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := 1; i < maxAttempts; i++ {
		require.NoError(t, fakeClock.BlockUntilContext(ctx, 1))
		fakeClock.Advance(maxBackoff)
	}

	flush(t, w)

	_, err := store.Get(context.Background(), "S1")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	assert.Equal(t, maxAttempts, store.attempts)
}

func TestWriter_CloseDropsLaterWrites(t *testing.T) {
	store := NewMemoryStore()
	w := NewWriter(store, clockwork.NewRealClock())

	w.Enqueue("S1", domain.Content(`1`))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, w.Close(ctx))

	w.Enqueue("S1", domain.Content(`2`))
	flush(t, w)

	got, err := store.Get(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, `1`, string(got))
}

func TestWriter_FlushHonoursContext(t *testing.T) {
	store := newGatedStore()
	w := NewWriter(store, clockwork.NewRealClock())
	t.Cleanup(func() { close(store.release) })

	w.Enqueue("S1", domain.Content(`1`))
	<-store.started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Flush(ctx), context.DeadlineExceeded)
}
