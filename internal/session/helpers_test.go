package session

import (
	"context"
	"sync"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/stretchr/testify/mock"
)

// fakeOutbound records every frame queued to it.
type fakeOutbound struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (f *fakeOutbound) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return domain.ErrPeerClosed
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeOutbound) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}

func (f *fakeOutbound) Close(int, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeOutbound) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.frames...)
}

// directBroadcaster sends synchronously and remembers what it was asked to do.
type directBroadcaster struct {
	mu         sync.Mutex
	broadcasts []broadcastCall
}

type broadcastCall struct {
	screenID   domain.ScreenID
	recipients []string
	content    string
}

func (b *directBroadcaster) Broadcast(screenID domain.ScreenID, recipients []*domain.Connection, content domain.Content) {
	ids := make([]string, 0, len(recipients))
	for _, c := range recipients {
		ids = append(ids, c.ID())
		_ = b.Deliver(c, content)
	}
	b.mu.Lock()
	b.broadcasts = append(b.broadcasts, broadcastCall{screenID: screenID, recipients: ids, content: string(content)})
	b.mu.Unlock()
}

func (b *directBroadcaster) Deliver(conn *domain.Connection, content domain.Content) error {
	data, err := domain.EncodeContentUpdate(content)
	if err != nil {
		return err
	}
	return conn.Send(data)
}

func (b *directBroadcaster) calls() []broadcastCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]broadcastCall(nil), b.broadcasts...)
}

// mockGateway is a testify mock of the persistence gateway.
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Store(screenID domain.ScreenID, content domain.Content) {
	m.Called(screenID, string(content))
}

func (m *mockGateway) Load(ctx context.Context, screenID domain.ScreenID) (domain.Content, bool) {
	args := m.Called(ctx, screenID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return domain.Content(args.String(0)), args.Bool(1)
}

// memoryGateway keeps stored content in a map.
type memoryGateway struct {
	mu   sync.Mutex
	data map[domain.ScreenID]domain.Content
}

func newMemoryGateway() *memoryGateway {
	return &memoryGateway{data: make(map[domain.ScreenID]domain.Content)}
}

func (g *memoryGateway) Store(screenID domain.ScreenID, content domain.Content) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.data[screenID] = content
}

func (g *memoryGateway) Load(_ context.Context, screenID domain.ScreenID) (domain.Content, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.data[screenID]
	return c, ok
}

func newConn(id string, role domain.Role, screen domain.ScreenID) (*domain.Connection, *fakeOutbound) {
	out := &fakeOutbound{}
	return domain.NewConnection(id, domain.Handshake{ScreenID: screen, Role: role}, out), out
}

func contentUpdate(content string) string {
	return `{"type":"contentUpdate","content":` + content + `}`
}

// gatedGateway parks the first Store call until release is closed.
type gatedGateway struct {
	memoryGateway
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedGateway() *gatedGateway {
	return &gatedGateway{
		memoryGateway: memoryGateway{data: make(map[domain.ScreenID]domain.Content)},
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
}

func (g *gatedGateway) Store(screenID domain.ScreenID, content domain.Content) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	g.memoryGateway.Store(screenID, content)
}
