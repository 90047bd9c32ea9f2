// Package relay runs the lifecycle of one relay connection: handshake validation, attaching to the
// screen's session, dispatching inbound frames by role, and cleanup once the socket goes away.
package relay
