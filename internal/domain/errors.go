package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingScreenID   = errors.New("missing screenId parameter")
	ErrInvalidRole       = errors.New("invalid role")
	ErrMalformedMessage  = errors.New("malformed message")
	ErrUnexpectedMessage = errors.New("unexpected message for role")
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrSnapshotCorrupt   = errors.New("snapshot corrupt")
	ErrPeerClosed        = errors.New("peer closed")
	ErrPeerBackpressure  = errors.New("peer send queue full")
)

// WebSocket close codes used to reject a handshake. Both live in the
// application range (4000-4999) so clients can tell them from a normal closure.
const (
	CloseInvalidRole     = 4001
	CloseMissingScreenID = 4002
)

// HandshakeError rejects a connection before it is registered.
type HandshakeError struct {
	Code int
	Err  error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("handshake rejected (%d): %v", e.Code, e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}
