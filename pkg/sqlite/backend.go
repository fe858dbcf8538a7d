// Package sqlite provides the public API for the SQLite querybench store.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/querybench/internal/sqlite"
	"github.com/mesh-intelligence/querybench/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend:  types.BackendSQLite,
//	    InMemory: true,
//	})
//	defer store.Detach()
func NewBackend() types.Store {
	return sqlite.NewBackend()
}

// NewBackendWithLogger is NewBackend with statement and load tracing sent
// to logger.
func NewBackendWithLogger(logger zerolog.Logger) types.Store {
	return sqlite.NewBackend(sqlite.WithLogger(logger))
}
