package domain

import "context"

// SnapshotStore is a key to blob store holding the latest content per screen.
// Get returns ErrSnapshotNotFound when nothing was stored and ErrSnapshotCorrupt
// when the stored bytes are not valid JSON.
type SnapshotStore interface {
	Put(ctx context.Context, screenID ScreenID, content Content) error
	Get(ctx context.Context, screenID ScreenID) (Content, error)
}

// PersistenceGateway is the session store's view of durable storage.
// Store is fire-and-forget; Load never fails, it reports absence instead.
type PersistenceGateway interface {
	Store(screenID ScreenID, content Content)
	Load(ctx context.Context, screenID ScreenID) (Content, bool)
}

// Broadcaster fans content out to consumers.
type Broadcaster interface {
	Broadcast(screenID ScreenID, recipients []*Connection, content Content)
	Deliver(conn *Connection, content Content) error
}
