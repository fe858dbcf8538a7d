package types

import "errors"

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// InMemory keeps the database in process memory. DataDir is ignored
	// and nothing survives Detach.
	InMemory bool `json:"memory" yaml:"memory"`

	// StrictTypes makes AddActivity reject scores that are not integers
	// and dates that are not YYYY-MM-DD. Off by default: values pass
	// through as text and SQLite column affinity decides.
	StrictTypes bool `json:"strict_types" yaml:"strict_types"`

	Seed SeedConfig `json:"seed" yaml:"seed"`
}

// SeedConfig names record files that are bulk-loaded right after the
// schema is applied. Empty paths are skipped.
type SeedConfig struct {
	Users      string `json:"users" yaml:"users"`
	Activities string `json:"activities" yaml:"activities"`
}

// Empty reports whether no seed source is configured.
func (s SeedConfig) Empty() bool {
	return s.Users == "" && s.Activities == ""
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// DatabaseFileName is the SQLite file created inside DataDir.
const DatabaseFileName = "querybench.db"

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}
