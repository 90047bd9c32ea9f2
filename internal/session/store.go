package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/metrics"
)

// Session is the state of one screen. Sessions are created lazily and never removed,
// so the last content survives for displays that join later.
type Session struct {
	mu          sync.Mutex
	screenID    domain.ScreenID
	producer    *domain.Connection
	consumers   map[string]*domain.Connection
	lastContent domain.Content
	// hydrated is set once lastContent reflects persistence or a sync.
	hydrated bool
}

func newSession(screenID domain.ScreenID) *Session {
	return &Session{
		screenID:  screenID,
		consumers: make(map[string]*domain.Connection),
	}
}

// Info is a point-in-time view of a session.
type Info struct {
	ScreenID    domain.ScreenID `json:"screen_id"`
	HasProducer bool            `json:"has_producer"`
	ProducerID  string          `json:"producer_id,omitempty"`
	Consumers   int             `json:"consumers"`
	HasContent  bool            `json:"has_content"`
}

func (s *Session) info() Info {
	info := Info{
		ScreenID:   s.screenID,
		Consumers:  len(s.consumers),
		HasContent: s.lastContent != nil,
	}
	if s.producer != nil {
		info.HasProducer = true
		info.ProducerID = s.producer.ID()
	}
	return info
}

func (s *Session) consumerList() []*domain.Connection {
	list := make([]*domain.Connection, 0, len(s.consumers))
	for _, c := range s.consumers {
		list = append(list, c)
	}
	return list
}

// Store is the single owner of session state.
type Store struct {
	mu          sync.RWMutex
	sessions    map[domain.ScreenID]*Session
	gateway     domain.PersistenceGateway
	broadcaster domain.Broadcaster
}

func NewStore(gateway domain.PersistenceGateway, broadcaster domain.Broadcaster) *Store {
	return &Store{
		sessions:    make(map[domain.ScreenID]*Session),
		gateway:     gateway,
		broadcaster: broadcaster,
	}
}

// GetOrCreate returns the session for screenID, inserting an empty one if needed.
func (s *Store) GetOrCreate(screenID domain.ScreenID) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[screenID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[screenID]; ok {
		return sess
	}
	sess = newSession(screenID)
	s.sessions[screenID] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return sess
}

func (s *Store) lookup(screenID domain.ScreenID) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[screenID]
	return sess, ok
}

// AttachProducer makes conn the addressed producer of its screen. A previous
// producer is not closed; it just stops being the one the session points at.
func (s *Store) AttachProducer(ctx context.Context, conn *domain.Connection) {
	sess := s.GetOrCreate(conn.ScreenID())

	sess.mu.Lock()
	replaced := sess.producer
	sess.producer = conn
	sess.mu.Unlock()

	metrics.ConnectedPeers.WithLabelValues("producer").Inc()
	if replaced != nil {
		slog.InfoContext(ctx, "Producer replaced", "screen_id", conn.ScreenID(), "previous_connection_id", replaced.ID())
		return
	}
	slog.InfoContext(ctx, "Producer attached", "screen_id", conn.ScreenID())
}

// AttachConsumer adds conn to the consumer set and sends it the last known content,
// if any. The catch-up frame is queued while the session lock is held so it is
// always ordered before any broadcast that includes this consumer.
func (s *Store) AttachConsumer(ctx context.Context, conn *domain.Connection) {
	sess := s.GetOrCreate(conn.ScreenID())

	sess.mu.Lock()
	s.hydrateLocked(ctx, sess)
	sess.consumers[conn.ID()] = conn
	content := sess.lastContent
	total := len(sess.consumers)
	var catchUpErr error
	if content != nil {
		catchUpErr = s.broadcaster.Deliver(conn, content)
	}
	sess.mu.Unlock()

	metrics.ConnectedPeers.WithLabelValues("consumer").Inc()
	slog.InfoContext(ctx, "Consumer attached", "screen_id", conn.ScreenID(), "total_consumers", total)

	switch {
	case content == nil:
		slog.DebugContext(ctx, "No existing content for screen", "screen_id", conn.ScreenID())
	case catchUpErr != nil:
		slog.WarnContext(ctx, "Catch-up send failed", "screen_id", conn.ScreenID(), "error", catchUpErr)
	default:
		slog.DebugContext(ctx, "Catch-up content sent", "screen_id", conn.ScreenID())
	}
}

// hydrateLocked loads persisted content the first time a session needs it.
// Must be called with sess.mu held.
func (s *Store) hydrateLocked(ctx context.Context, sess *Session) {
	if sess.hydrated {
		return
	}
	sess.hydrated = true
	if s.gateway == nil {
		return
	}
	if content, ok := s.gateway.Load(ctx, sess.screenID); ok {
		sess.lastContent = content
	}
}

// Detach removes conn from its session. The session itself stays.
func (s *Store) Detach(ctx context.Context, conn *domain.Connection) {
	sess, ok := s.lookup(conn.ScreenID())
	if !ok {
		return
	}

	sess.mu.Lock()
	wasProducer := sess.producer == conn
	if wasProducer {
		sess.producer = nil
	}
	_, wasConsumer := sess.consumers[conn.ID()]
	if wasConsumer {
		delete(sess.consumers, conn.ID())
	}
	remaining := len(sess.consumers)
	sess.mu.Unlock()

	switch {
	case wasConsumer:
		metrics.ConnectedPeers.WithLabelValues("consumer").Dec()
		slog.InfoContext(ctx, "Consumer detached", "screen_id", conn.ScreenID(), "remaining_consumers", remaining)
	case wasProducer:
		metrics.ConnectedPeers.WithLabelValues("producer").Dec()
		slog.InfoContext(ctx, "Producer detached", "screen_id", conn.ScreenID())
	case conn.Role() == domain.RoleProducer:
		// Superseded producer closing; the session already points elsewhere.
		metrics.ConnectedPeers.WithLabelValues("producer").Dec()
		slog.DebugContext(ctx, "Stale producer closed", "screen_id", conn.ScreenID())
	}
}

// RecordContent replaces the screen's last content, hands it to persistence and
// fans it out to the consumers attached at this moment. Any producer may call it;
// there is no fencing between producers of the same screen.
//
// The persistence hand-off happens under the session lock so the writer sees
// contents in the same order as lastContent. Gateway.Store only enqueues.
func (s *Store) RecordContent(ctx context.Context, screenID domain.ScreenID, content domain.Content) {
	sess := s.GetOrCreate(screenID)

	sess.mu.Lock()
	sess.lastContent = content
	sess.hydrated = true
	if s.gateway != nil {
		s.gateway.Store(screenID, content)
	}
	recipients := sess.consumerList()
	sess.mu.Unlock()

	s.broadcaster.Broadcast(screenID, recipients, content)

	slog.DebugContext(ctx, "Content synced and broadcast", "screen_id", screenID, "recipients", len(recipients))
}

// LastContent returns the in-memory content, falling back to persistence.
func (s *Store) LastContent(ctx context.Context, screenID domain.ScreenID) (domain.Content, bool) {
	if sess, ok := s.lookup(screenID); ok {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		s.hydrateLocked(ctx, sess)
		return sess.lastContent, sess.lastContent != nil
	}
	if s.gateway == nil {
		return nil, false
	}
	return s.gateway.Load(ctx, screenID)
}

// Consumers returns a copy of the screen's current consumer set.
func (s *Store) Consumers(screenID domain.ScreenID) []*domain.Connection {
	sess, ok := s.lookup(screenID)
	if !ok {
		return nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.consumerList()
}

// Producer returns the addressed producer of a screen, if any.
func (s *Store) Producer(screenID domain.ScreenID) (*domain.Connection, bool) {
	sess, ok := s.lookup(screenID)
	if !ok {
		return nil, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.producer, sess.producer != nil
}

// Info describes one session.
func (s *Store) Info(screenID domain.ScreenID) (Info, bool) {
	sess, ok := s.lookup(screenID)
	if !ok {
		return Info{}, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.info(), true
}

// List describes all sessions ordered by screen id.
func (s *Store) List() []Info {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	infos := make([]Info, 0, len(sessions))
	for _, sess := range sessions {
		sess.mu.Lock()
		infos = append(infos, sess.info())
		sess.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ScreenID < infos[j].ScreenID })
	return infos
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
