// Package paths locates the querybench config directory and the data
// directory that holds querybench.db.
package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/mesh-intelligence/querybench/pkg/types"
)

// Environment overrides, consulted after flags.
const (
	EnvConfigDir = "QUERYBENCH_CONFIG_DIR"
	EnvDataDir   = "QUERYBENCH_DATA_DIR"
)

// LocalDataDirName is used under the working directory when nothing names
// a data directory.
const LocalDataDirName = ".querybench-db"

const appName = "querybench"

// Source names the setting a directory was taken from.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceConfig  Source = "config"
	SourceEnv     Source = "env"
	SourceDefault Source = "default"
)

// Dir is a resolved absolute directory.
type Dir struct {
	Path   string
	Source Source
}

// platform is swapped in tests.
var platform = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// userDir returns the per-user querybench directory. Linux honours the XDG
// variable and falls back to linuxBase under the home directory; other
// systems use os.UserConfigDir for both config and data.
func userDir(xdgVar string, linuxBase ...string) (string, error) {
	if platform.goos != "linux" {
		base, err := platform.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, appName), nil
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platform.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, linuxBase...), appName)...), nil
}

// DefaultConfigDir is where config.yaml lives when neither --config-dir nor
// QUERYBENCH_CONFIG_DIR is set.
func DefaultConfigDir() (string, error) {
	return userDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir is the per-user store location that `init --global`
// records in config.yaml.
func DefaultDataDir() (string, error) {
	return userDir("XDG_DATA_HOME", ".local", "share")
}

type candidate struct {
	value  string
	source Source
}

// pick returns the first non-empty candidate as an absolute path.
func pick(candidates ...candidate) (Dir, bool, error) {
	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		abs, err := filepath.Abs(c.value)
		if err != nil {
			return Dir{}, false, err
		}
		return Dir{Path: abs, Source: c.source}, true, nil
	}
	return Dir{}, false, nil
}

// ResolveConfigDir applies --config-dir, then QUERYBENCH_CONFIG_DIR, then
// DefaultConfigDir.
func ResolveConfigDir(flag string) (Dir, error) {
	d, ok, err := pick(
		candidate{flag, SourceFlag},
		candidate{os.Getenv(EnvConfigDir), SourceEnv},
	)
	if ok || err != nil {
		return d, err
	}
	path, err := DefaultConfigDir()
	if err != nil {
		return Dir{}, err
	}
	return Dir{Path: path, Source: SourceDefault}, nil
}

// ResolveDataDir applies --data-dir, then data_dir from config.yaml, then
// QUERYBENCH_DATA_DIR, then LocalDataDirName in the working directory.
// DefaultDataDir is never chosen here; init --global writes it to config.
func ResolveDataDir(flag, configured string) (Dir, error) {
	d, ok, err := pick(
		candidate{flag, SourceFlag},
		candidate{configured, SourceConfig},
		candidate{os.Getenv(EnvDataDir), SourceEnv},
	)
	if ok || err != nil {
		return d, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return Dir{}, err
	}
	return Dir{Path: filepath.Join(cwd, LocalDataDirName), Source: SourceDefault}, nil
}

// DatabasePath is the SQLite file inside dataDir.
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, types.DatabaseFileName)
}
