package redis

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// snapshotRedis is started on first use, so the hook unit tests in this
// package never wait for a container. SNAPSHOT_TEST_REDIS_URL points the
// tests at an existing server instead.
var snapshotRedis struct {
	once      sync.Once
	url       string
	container *tcredis.RedisContainer
	err       error
}

func TestMain(m *testing.M) {
	code := m.Run()
	if snapshotRedis.container != nil {
		_ = snapshotRedis.container.Terminate(context.Background())
	}
	os.Exit(code)
}

func snapshotRedisURL(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis snapshot store test in short mode")
	}

	snapshotRedis.once.Do(func() {
		if url := os.Getenv("SNAPSHOT_TEST_REDIS_URL"); url != "" {
			snapshotRedis.url = url
			return
		}
		ctx := context.Background()
		c, err := tcredis.Run(ctx, "redis:7-alpine")
		if err != nil {
			snapshotRedis.err = err
			return
		}
		snapshotRedis.container = c
		snapshotRedis.url, snapshotRedis.err = c.ConnectionString(ctx)
	})
	require.NoError(t, snapshotRedis.err, "redis for snapshot store tests")
	return snapshotRedis.url
}

// newSnapshotClient connects through NewClient, so the metrics and breaker
// hooks are on the path, and empties the database the snapshots live in.
func newSnapshotClient(t *testing.T) *goredis.Client {
	t.Helper()
	ctx := context.Background()

	client, err := NewClient(ctx, snapshotRedisURL(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.FlushDB(ctx).Err())
	return client
}

func TestSnapshotStore_PutGet(t *testing.T) {
	client := newSnapshotClient(t)
	store := NewSnapshotStore(client, "")
	ctx := context.Background()

	content := domain.Content(`{"objects":[{"type":"rect","left":10}],"background":"#fff"}`)
	require.NoError(t, store.Put(ctx, "lobby", content))

	got, err := store.Get(ctx, "lobby")
	require.NoError(t, err)
	assert.Equal(t, string(content), string(got))

	raw, err := client.Get(ctx, DefaultKeyPrefix+"lobby").Result()
	require.NoError(t, err)
	assert.Equal(t, string(content), raw)
}

func TestSnapshotStore_Overwrite(t *testing.T) {
	client := newSnapshotClient(t)
	store := NewSnapshotStore(client, "test:")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "S1", domain.Content(`{"v":1}`)))
	require.NoError(t, store.Put(ctx, "S1", domain.Content(`{"v":2}`)))

	got, err := store.Get(ctx, "S1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))
}

func TestSnapshotStore_NotFound(t *testing.T) {
	client := newSnapshotClient(t)
	store := NewSnapshotStore(client, "")

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestSnapshotStore_Corrupt(t *testing.T) {
	client := newSnapshotClient(t)
	store := NewSnapshotStore(client, "")
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, DefaultKeyPrefix+"broken", "{not json", 0).Err())

	_, err := store.Get(ctx, "broken")
	assert.ErrorIs(t, err, domain.ErrSnapshotCorrupt)
}

func TestSnapshotStore_Ping(t *testing.T) {
	client := newSnapshotClient(t)
	store := NewSnapshotStore(client, "")

	assert.NoError(t, store.Ping(context.Background()))
}
