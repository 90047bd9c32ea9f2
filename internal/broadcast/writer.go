package broadcast

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/domain"
	"github.com/Harjot9812/Digital-Signage-Content-Builder-Studio/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeDeadline     = 5 * time.Second
	pingInterval      = 30 * time.Second
	pongDeadline      = 60 * time.Second
	DefaultBufferSize = 16
)

// Peer is one websocket connection with a dedicated writer goroutine.
// It satisfies domain.Outbound; reads happen on the caller's goroutine via ReadMessage.
type Peer struct {
	connection  *websocket.Conn
	clock       clockwork.Clock
	sendChannel chan []byte
	doneChannel chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	closed      atomic.Bool
}

// NewPeer starts the writer for connection. bufferSize bounds the frames that may be
// queued before the peer counts as slow; readLimit caps inbound frame size (0 means no cap).
func NewPeer(connection *websocket.Conn, clock clockwork.Clock, bufferSize int, readLimit int64) *Peer {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	p := &Peer{
		connection:  connection,
		clock:       clock,
		sendChannel: make(chan []byte, bufferSize),
		doneChannel: make(chan struct{}),
	}
	if readLimit > 0 {
		connection.SetReadLimit(readLimit)
	}
	p.configurePongHandler()
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *Peer) run() {
	ticker := p.clock.NewTicker(pingInterval)
	defer ticker.Stop()
	defer p.wg.Done()

	for {
		select {
		case msg := <-p.sendChannel:
			start := p.clock.Now()
			p.updateWriteDeadline()
			if err := p.connection.WriteMessage(websocket.TextMessage, msg); err != nil {
				p.abort()
				return
			}
			metrics.WebSocketMessageSendDuration.Observe(p.clock.Since(start).Seconds())
		case <-ticker.Chan():
			p.updateWriteDeadline()
			if err := p.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				metrics.WebSocketPingFailures.Inc()
				p.abort()
				return
			}
		case <-p.doneChannel:
			return
		}
	}
}

// abort tears the socket down from the writer goroutine so the pending read fails.
func (p *Peer) abort() {
	p.closed.Store(true)
	_ = p.connection.Close()
}

// Send queues data without blocking. A full queue closes the peer with 1013.
func (p *Peer) Send(data []byte) error {
	if p.closed.Load() {
		return domain.ErrPeerClosed
	}
	select {
	case p.sendChannel <- data:
		return nil
	case <-p.doneChannel:
		return domain.ErrPeerClosed
	default:
		// Close waits for the writer, so it must not run on the sender's goroutine.
		go p.Close(websocket.CloseTryAgainLater, "send queue full")
		return domain.ErrPeerBackpressure
	}
}

// Ready reports whether frames can still be queued.
func (p *Peer) Ready() bool {
	return !p.closed.Load()
}

// Close stops the writer, then sends a close frame with code and reason. Idempotent.
func (p *Peer) Close(code int, reason string) {
	p.stopOnce.Do(func() {
		p.closed.Store(true)
		close(p.doneChannel)

		// Only one goroutine may write at a time; wait for the writer to exit first.
		p.wg.Wait()

		closeMsg := websocket.FormatCloseMessage(code, reason)
		p.updateWriteDeadline()
		_ = p.connection.WriteMessage(websocket.CloseMessage, closeMsg)
		_ = p.connection.Close()
	})
}

// ReadMessage blocks until the next frame arrives. Any error is terminal.
func (p *Peer) ReadMessage() ([]byte, error) {
	_, data, err := p.connection.ReadMessage()
	if err != nil {
		return nil, err
	}
	p.updateReadDeadline()
	return data, nil
}

func (p *Peer) configurePongHandler() {
	p.updateReadDeadline()
	p.connection.SetPongHandler(func(string) error {
		p.updateReadDeadline()
		return nil
	})
}

func (p *Peer) updateWriteDeadline() {
	_ = p.connection.SetWriteDeadline(p.clock.Now().Add(writeDeadline))
}

func (p *Peer) updateReadDeadline() {
	_ = p.connection.SetReadDeadline(p.clock.Now().Add(pongDeadline))
}
