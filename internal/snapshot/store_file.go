package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
)

const fileExt = ".json"

// FileStore keeps one <screenId>.json file per screen in a directory.
// Screen ids are path-escaped so any id maps to a single file name.
type FileStore struct {
	dir string
}

var _ domain.SnapshotStore = (*FileStore)(nil)

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(screenID domain.ScreenID) string {
	return filepath.Join(s.dir, url.PathEscape(string(screenID))+fileExt)
}

// Put replaces the screen's file atomically: content goes to a temp file that is
// renamed over the target, so readers never observe a partial write.
func (s *FileStore) Put(_ context.Context, screenID domain.ScreenID, content domain.Content) error {
	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write snapshot for screen %s: %w", screenID, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync snapshot for screen %s: %w", screenID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot for screen %s: %w", screenID, err)
	}
	if err := os.Rename(tmpName, s.path(screenID)); err != nil {
		return fmt.Errorf("failed to replace snapshot for screen %s: %w", screenID, err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, screenID domain.ScreenID) (domain.Content, error) {
	data, err := os.ReadFile(s.path(screenID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot for screen %s: %w", screenID, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: screen %s", domain.ErrSnapshotCorrupt, screenID)
	}
	return domain.Content(data), nil
}

// List returns the screens that have a snapshot on disk.
func (s *FileStore) List(_ context.Context) ([]domain.ScreenID, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot directory: %w", err)
	}

	var ids []domain.ScreenID
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		id, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		ids = append(ids, domain.ScreenID(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Ping checks that the directory is still there.
func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}
