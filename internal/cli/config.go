package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/querybench/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys.
	cfgKeyBackend        = "backend"
	cfgKeyDataDir        = "data_dir"
	cfgKeyMemory         = "memory"
	cfgKeyStrictTypes    = "strict_types"
	cfgKeyLogLevel       = "log_level"
	cfgKeySeedUsers      = "seed.users"
	cfgKeySeedActivities = "seed.activities"

	defaultLogLevel = "warn"
)

// configHeader is written above the generated YAML in a new config.yaml.
const configHeader = `# querybench configuration
#
# backend:       storage backend (only sqlite)
# data_dir:      where querybench.db lives (overridable by --data-dir)
# memory:        use a throwaway in-memory store
# strict_types:  require integer scores and YYYY-MM-DD dates on add
# log_level:     debug, info, warn or error
# seed.users:    record file loaded into Users when a store is created
# seed.activities: record file loaded into Activities after users

`

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend     string   `yaml:"backend"`
	DataDir     string   `yaml:"data_dir,omitempty"`
	Memory      bool     `yaml:"memory"`
	StrictTypes bool     `yaml:"strict_types"`
	LogLevel    string   `yaml:"log_level"`
	Seed        seedFile `yaml:"seed,omitempty"`
}

type seedFile struct {
	Users      string `yaml:"users,omitempty"`
	Activities string `yaml:"activities,omitempty"`
}

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml is not an error; defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyMemory, false)
	v.SetDefault(cfgKeyStrictTypes, false)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("%w: read config: %v", errConfig, err)
	}

	return v, nil
}

// seedConfig returns the seed files named in config. Relative paths are
// taken from the working directory.
func seedConfig(v *viper.Viper) types.SeedConfig {
	return types.SeedConfig{
		Users:      v.GetString(cfgKeySeedUsers),
		Activities: v.GetString(cfgKeySeedActivities),
	}
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns false, nil.
func writeConfigIfMissing(path, dataDir string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := configFile{
		Backend:  types.BackendSQLite,
		DataDir:  dataDir,
		LogLevel: defaultLogLevel,
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	return true, os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}
