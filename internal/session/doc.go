// Package session holds per-screen relay state.
//
// Store maps a screen id to its Session (current producer, consumer set, last content).
// Each Session has its own mutex; the store-wide lock only guards the map. Fan-out to
// consumers always happens after the session lock is released, on a copy of the consumer set.
// Registry validates handshakes and tracks every live connection.
package session
