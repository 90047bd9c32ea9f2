// Package snapshot persists the latest content of every screen.
//
// Stores (FileStore, MemoryStore, plus the Redis and SQL ones in sibling packages) only know how to
// put and get one blob per screen. Writer runs those puts in the background, coalescing bursts per
// screen, and Gateway is what the session store sees: fire-and-forget Store, never-failing Load.
package snapshot
