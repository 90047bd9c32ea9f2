package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "screen:"

// SnapshotStore keeps one string key per screen holding the raw content JSON.
type SnapshotStore struct {
	rdb    *goredis.Client
	prefix string
}

var _ domain.SnapshotStore = (*SnapshotStore)(nil)

func NewSnapshotStore(rdb *goredis.Client, prefix string) *SnapshotStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &SnapshotStore{rdb: rdb, prefix: prefix}
}

func (s *SnapshotStore) key(screenID domain.ScreenID) string {
	return s.prefix + string(screenID)
}

// Put overwrites the screen's snapshot. Snapshots never expire.
func (s *SnapshotStore) Put(ctx context.Context, screenID domain.ScreenID, content domain.Content) error {
	if err := s.rdb.Set(ctx, s.key(screenID), string(content), 0).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot for screen %s: %w", screenID, err)
	}
	return nil
}

func (s *SnapshotStore) Get(ctx context.Context, screenID domain.ScreenID) (domain.Content, error) {
	val, err := s.rdb.Get(ctx, s.key(screenID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for screen %s: %w", screenID, err)
	}
	if !json.Valid(val) {
		return nil, fmt.Errorf("%w: screen %s", domain.ErrSnapshotCorrupt, screenID)
	}
	return domain.Content(val), nil
}

// Ping reports whether Redis is reachable.
func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
