package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/querybench/internal/paths"
)

func newInitCmd() *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize querybench storage",
		Long: "Create the configuration directory, a default config.yaml, the data\n" +
			"directory and the Users/Activities schema. A new store is seeded from\n" +
			"the seed files named in config.yaml. Running init again is harmless.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, global)
		},
	}
	cmd.Flags().BoolVar(&global, "global", false, "keep the store in the per-user data directory instead of $(CWD)")
	return cmd
}

func runInit(cmd *cobra.Command, global bool) error {
	configDataDir := current.v.GetString(cfgKeyDataDir)
	if global && flags.dataDir == "" && configDataDir == "" {
		dir, err := paths.DefaultDataDir()
		if err != nil {
			return fmt.Errorf("%w: resolve data dir: %v", errConfig, err)
		}
		configDataDir = dir
		current.v.Set(cfgKeyDataDir, dir)
	}

	configPath := filepath.Join(current.configDir, configFileExt)
	created, err := writeConfigIfMissing(configPath, configDataDir)
	if err != nil {
		return fmt.Errorf("%w: write config: %v", errConfig, err)
	}
	if created {
		current.log.Info().Str("path", configPath).Msg("config written")
	}

	cfg, err := storeConfig()
	if err != nil {
		return err
	}

	if !cfg.InMemory {
		_, statErr := os.Stat(paths.DatabasePath(cfg.DataDir))
		if os.IsNotExist(statErr) {
			cfg.Seed = seedConfig(current.v)
		}
	}

	backend, err := openStore(cfg)
	if err != nil {
		return err
	}
	if err := backend.Detach(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	where := backend.Path()
	fmt.Fprintf(cmd.OutOrStdout(), "querybench initialized (config: %s, store: %s)\n", current.configDir, where)
	return nil
}
