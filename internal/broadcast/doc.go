// Package broadcast delivers content frames to websocket peers.
//
// Every Peer owns a write goroutine fed by a bounded queue, so the session store can fan out
// without ever blocking on a slow display. A peer whose queue is full is closed and dropped.
package broadcast
