package session

import (
	"net/url"
	"sync"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
)

// ParseHandshake validates the parameters a connection was opened with.
// The screen id is checked before the role, so a request missing both is
// reported as missing its screen id.
func ParseHandshake(query url.Values) (domain.Handshake, error) {
	screenID := query.Get("screenId")
	if screenID == "" {
		return domain.Handshake{}, &domain.HandshakeError{Code: domain.CloseMissingScreenID, Err: domain.ErrMissingScreenID}
	}

	role, err := domain.ParseRole(query.Get("role"))
	if err != nil {
		return domain.Handshake{}, &domain.HandshakeError{Code: domain.CloseInvalidRole, Err: err}
	}

	return domain.Handshake{ScreenID: domain.ScreenID(screenID), Role: role}, nil
}

// Registry tracks live connections and the role and screen each declared.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*domain.Connection
	store *Store
}

func NewRegistry(store *Store) *Registry {
	return &Registry{
		conns: make(map[string]*domain.Connection),
		store: store,
	}
}

// Register records a validated connection and makes sure its session exists.
// It does not attach the connection to the session; that is the caller's next step.
func (r *Registry) Register(id string, h domain.Handshake, out domain.Outbound) *domain.Connection {
	conn := domain.NewConnection(id, h, out)
	r.store.GetOrCreate(h.ScreenID)

	r.mu.Lock()
	r.conns[id] = conn
	r.mu.Unlock()
	return conn
}

// Unregister forgets a connection. Safe to call more than once.
func (r *Registry) Unregister(conn *domain.Connection) {
	r.mu.Lock()
	delete(r.conns, conn.ID())
	r.mu.Unlock()
}

// Lookup returns a live connection by id.
func (r *Registry) Lookup(id string) (*domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// All returns a copy of every live connection.
func (r *Registry) All() []*domain.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*domain.Connection, 0, len(r.conns))
	for _, c := range r.conns {
		all = append(all, c)
	}
	return all
}
