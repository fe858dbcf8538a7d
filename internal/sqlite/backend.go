// Package sqlite implements the querybench store on SQLite. One Backend
// owns one database connection; every core operation (inspect, load,
// execute, mutate) runs against it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/querybench/internal/paths"
	"github.com/mesh-intelligence/querybench/pkg/types"
)

const (
	driverName = "sqlite"
	memoryDSN  = ":memory:"
)

// Compile-time check: Backend implements types.Store.
var _ types.Store = (*Backend)(nil)

// Backend implements the Store interface on a single SQLite connection.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	dsn      string
	log      zerolog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for statement and load tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Backend) {
		b.log = l
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach opens the database described by config, applies the schema, and
// loads the configured seed files. With InMemory set the database lives in
// process memory; otherwise it is DataDir/querybench.db and survives
// Detach. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dsn := memoryDSN
	if !config.InMemory {
		dataDir := config.DataDir
		if dataDir == "" {
			dataDir = "."
		}
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return fmt.Errorf("%w: creating data dir: %v", types.ErrStore, err)
		}
		dsn = paths.DatabasePath(dataDir)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("%w: opening database: %v", types.ErrStore, err)
	}

	// A second connection to :memory: would be a second, empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("%w: applying schema: %v", types.ErrStore, err)
	}

	b.db = db
	b.dsn = dsn
	b.config = config

	if !config.Seed.Empty() {
		if err := b.seed(ctx, config.Seed); err != nil {
			db.Close()
			b.db = nil
			return fmt.Errorf("seed: %w", err)
		}
	}

	b.attached = true
	b.log.Debug().Str("dsn", dsn).Bool("memory", config.InMemory).Msg("store attached")
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("%w: closing database: %v", types.ErrStore, err)
		}
		b.db = nil
	}

	b.attached = false
	b.log.Debug().Str("dsn", b.dsn).Msg("store detached")
	return nil
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// Path returns the database file path, or ":memory:".
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dsn
}

// handle returns the open database. The caller must hold b.mu.
func (b *Backend) handle() (*sql.DB, error) {
	if !b.attached || b.db == nil {
		return nil, types.ErrStoreDetached
	}
	return b.db, nil
}

// newQueryID generates a UUID v7 used to correlate an execution with its
// log lines.
func newQueryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
