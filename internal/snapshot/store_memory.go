package snapshot

import (
	"context"
	"sync"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
)

// MemoryStore keeps snapshots in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[domain.ScreenID][]byte
}

var _ domain.SnapshotStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[domain.ScreenID][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, screenID domain.ScreenID, content domain.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[screenID] = append([]byte(nil), content...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, screenID domain.ScreenID) (domain.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[screenID]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return append(domain.Content(nil), data...), nil
}
