package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Put(ctx context.Context, screenID domain.ScreenID, content domain.Content) error {
	return m.Called(ctx, screenID, content).Error(0)
}

func (m *mockStore) Get(ctx context.Context, screenID domain.ScreenID) (domain.Content, error) {
	args := m.Called(ctx, screenID)
	if c, ok := args.Get(0).(domain.Content); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestGuardedStore_OpensAfterConsecutiveFailures(t *testing.T) {
	next := &mockStore{}
	next.On("Put", mock.Anything, domain.ScreenID("S1"), mock.Anything).Return(errors.New("connection refused")).Times(5)
	g := NewGuardedStore("test-store", next)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := g.Put(ctx, "S1", domain.Content(`{}`))
		require.Error(t, err)
		require.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}
	require.Equal(t, gobreaker.StateOpen, g.State())

	err := g.Put(ctx, "S1", domain.Content(`{}`))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	next.AssertExpectations(t)
}

func TestGuardedStore_NotFoundDoesNotTrip(t *testing.T) {
	next := &mockStore{}
	next.On("Get", mock.Anything, domain.ScreenID("S1")).Return(nil, domain.ErrSnapshotNotFound)
	g := NewGuardedStore("test-store-nf", next)

	for i := 0; i < 10; i++ {
		_, err := g.Get(context.Background(), "S1")
		require.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, g.State())
}

func TestGuardedStore_PassesContentThrough(t *testing.T) {
	next := &mockStore{}
	next.On("Get", mock.Anything, domain.ScreenID("S1")).Return(domain.Content(`{"ok":true}`), nil)
	g := NewGuardedStore("test-store-ok", next)

	got, err := g.Get(context.Background(), "S1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(got))
}
