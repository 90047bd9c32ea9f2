package domain

// Outbound is the write side of a live connection.
//
// Send must never block: it either queues data for delivery or returns
// ErrPeerClosed / ErrPeerBackpressure.
type Outbound interface {
	Send(data []byte) error
	Ready() bool
	Close(code int, reason string)
}

// Connection is a registered relay connection. Role and screen are fixed
// when the connection is registered.
type Connection struct {
	id       string
	role     Role
	screenID ScreenID
	out      Outbound
}

func NewConnection(id string, h Handshake, out Outbound) *Connection {
	return &Connection{id: id, role: h.Role, screenID: h.ScreenID, out: out}
}

func (c *Connection) ID() string         { return c.id }
func (c *Connection) Role() Role         { return c.role }
func (c *Connection) ScreenID() ScreenID { return c.screenID }

func (c *Connection) Send(data []byte) error { return c.out.Send(data) }
func (c *Connection) Ready() bool            { return c.out.Ready() }

func (c *Connection) Close(code int, reason string) { c.out.Close(code, reason) }
