// Package cli implements the querybench command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/querybench/internal/paths"
	"github.com/mesh-intelligence/querybench/internal/records"
	"github.com/mesh-intelligence/querybench/internal/sqlite"
	"github.com/mesh-intelligence/querybench/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errConfig marks failures reading or writing configuration.
var errConfig = errors.New("configuration error")

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	memory    bool
	jsonMode  bool
	verbose   bool
}

var flags rootFlags

// session holds what PersistentPreRunE resolved for the running command.
type session struct {
	configDir string
	v         *viper.Viper
	log       zerolog.Logger
}

var current session

// NewRootCmd creates the top-level "querybench" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "querybench",
		Short: "Compose, highlight and run queries over a users/activities store",
		Long: "querybench loads users and game activities into a SQLite store, builds\n" +
			"filter and average queries, highlights SQL keywords, and runs arbitrary\n" +
			"statements against the live schema.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir, or $QUERYBENCH_CONFIG_DIR)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.querybench-db)")
	pf.BoolVar(&flags.memory, "memory", false, "use an in-memory store that is discarded on exit")
	pf.BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newTablesCmd())
	root.AddCommand(newColumnsCmd())
	root.AddCommand(newLoadCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newHighlightCmd())
	root.AddCommand(newExecCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newShellCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode maps a command error to a process exit code. Store and
// configuration failures are system errors; everything else was caused by
// the input.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrStore),
		errors.Is(err, types.ErrStoreDetached),
		errors.Is(err, errConfig):
		return exitSysError
	default:
		return exitUserError
	}
}

// setup resolves the config directory, reads config.yaml and installs the
// logger. It runs before every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	dir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return fmt.Errorf("%w: resolve config dir: %v", errConfig, err)
	}
	configDir := dir.Path

	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	if err := v.BindPFlag(cfgKeyMemory, cmd.Root().PersistentFlags().Lookup("memory")); err != nil {
		return fmt.Errorf("%w: bind memory flag: %v", errConfig, err)
	}

	level := zerolog.WarnLevel
	if s := v.GetString(cfgKeyLogLevel); s != "" {
		if level, err = zerolog.ParseLevel(s); err != nil {
			return fmt.Errorf("%w: log_level %q: %v", errConfig, s, err)
		}
	}
	if flags.verbose {
		level = zerolog.DebugLevel
	}

	current = session{
		configDir: configDir,
		v:         v,
		log: zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
			Level(level).
			With().
			Timestamp().
			Logger(),
	}
	current.log.Debug().
		Str("config_dir", configDir).
		Str("from", string(dir.Source)).
		Str("config_file", v.ConfigFileUsed()).
		Msg("config loaded")
	return nil
}

// storeConfig builds the Attach configuration from config.yaml and flags.
// Seed files are only applied to in-memory stores here; file stores are
// seeded once by init.
func storeConfig() (types.Config, error) {
	v := current.v
	cfg := types.Config{
		Backend:     v.GetString(cfgKeyBackend),
		InMemory:    v.GetBool(cfgKeyMemory),
		StrictTypes: v.GetBool(cfgKeyStrictTypes),
	}
	if cfg.InMemory {
		cfg.Seed = seedConfig(v)
		return cfg, nil
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("%w: resolve data dir: %v", errConfig, err)
	}
	current.log.Debug().Str("data_dir", dataDir.Path).Str("from", string(dataDir.Source)).Msg("data dir resolved")
	cfg.DataDir = dataDir.Path
	return cfg, nil
}

// openStore attaches a backend for the running command. The caller must
// Detach it.
func openStore(cfg types.Config) (*sqlite.Backend, error) {
	b := sqlite.NewBackend(sqlite.WithLogger(current.log))
	if err := b.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	return b, nil
}

// withStore attaches the configured store, runs fn and detaches.
func withStore(fn func(b *sqlite.Backend) error) error {
	cfg, err := storeConfig()
	if err != nil {
		return err
	}
	b, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer b.Detach()
	return fn(b)
}

// parseFormat resolves a --format flag, falling back to the extension.
func parseFormat(name, path string) (records.Format, error) {
	f, err := records.ParseFormat(name, path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	return f, nil
}
