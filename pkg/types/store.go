package types

import (
	"context"
	"errors"
)

// Store is the handle every core operation runs against. Callers attach it
// to a backend, call the inspect/load/execute/mutate operations, and detach
// when done. A Store serves one caller at a time.
type Store interface {
	// Attach opens the backend described by config, applies the schema,
	// and loads any configured seed files. Returns ErrAlreadyAttached if
	// called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrStoreDetached.
	Detach() error

	// ListTables returns user-defined tables in catalog order.
	ListTables(ctx context.Context) ([]string, error)

	// ListColumns returns the columns of table in declaration order.
	// Returns ErrNotFound if the table does not exist.
	ListColumns(ctx context.Context, table string) ([]string, error)

	// DescribeSchema returns every user table together with its columns.
	DescribeSchema(ctx context.Context) ([]TableInfo, error)

	// LoadUsers appends user records and returns how many were inserted.
	LoadUsers(ctx context.Context, records []Record) (int, error)

	// LoadActivities appends activity records and returns how many were
	// inserted.
	LoadActivities(ctx context.Context, records []Record) (int, error)

	// Execute runs one statement as written and returns its result.
	Execute(ctx context.Context, text string) (*Result, error)

	// ExecuteStatement runs a parameterized statement with bound args.
	ExecuteStatement(ctx context.Context, query string, args ...any) (*Result, error)

	// AddUser inserts a user and returns the id the store assigned.
	AddUser(ctx context.Context, username, email string) (int64, error)

	// AddActivity inserts an activity for the named user and returns its id.
	AddActivity(ctx context.Context, username, game, score, date string) (int64, error)
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Operation errors. Every failure returned by a Store operation wraps
// exactly one of these, so callers classify with errors.Is and show the
// full message to the user.
var (
	// ErrValidation reports missing or invalid input, detected before the
	// store is touched.
	ErrValidation = errors.New("validation error")

	// ErrNotFound reports a referenced table or user that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSourceFormat reports a bulk-load record missing a required field
	// or a source that cannot be decoded.
	ErrSourceFormat = errors.New("source format error")

	// ErrQueryExecution reports query text the store rejected or failed to
	// run: syntax errors, constraint violations, type errors.
	ErrQueryExecution = errors.New("query execution error")

	// ErrStore reports an unexpected storage failure.
	ErrStore = errors.New("store error")
)
