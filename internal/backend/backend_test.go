package backend

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/platform/config"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_File(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{SnapshotBackend: config.BackendFile, SnapshotDir: t.TempDir()}

	b, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Store.Put(ctx, "lobby", json.RawMessage(`{"a":1}`)))
	ids, err := b.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.ScreenID{"lobby"}, ids)
	assert.NoError(t, b.Ping(ctx))
}

func TestOpen_MemoryCannotList(t *testing.T) {
	ctx := context.Background()
	b, err := Open(ctx, &config.Config{SnapshotBackend: config.BackendMemory})
	require.NoError(t, err)
	defer b.Close()

	_, err = b.List(ctx)
	assert.ErrorIs(t, err, ErrListUnsupported)
	assert.NoError(t, b.Ping(ctx))
}

func TestOpen_SQLiteIsGuarded(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{SnapshotBackend: config.BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "snapshots.db")}

	b, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &snapshot.GuardedStore{}, b.Store)

	require.NoError(t, b.Store.Put(ctx, "s1", json.RawMessage(`[1,2]`)))
	got, err := b.Store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(got))

	ids, err := b.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.ScreenID{"s1"}, ids)
	assert.NoError(t, b.Ping(ctx))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{SnapshotBackend: "etcd"})
	assert.Error(t, err)
}
