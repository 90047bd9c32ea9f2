// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (errors.go, screen.go, connection.go, message.go, snapshot.go)
// with shared types and cross-cutting interfaces. Keeps the session store, broadcaster and persistence
// adapters free of import cycles by holding the contracts between them.
package domain
