package msd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// ProjectConfigFile is the name FindProjectConfig looks for.
const ProjectConfigFile = "msdscript.toml"

// ProjectConfig represents a msdscript.toml project configuration file.
type ProjectConfig struct {
	// Mode is used when the command line names no mode.
	Mode Mode `toml:"mode"`

	REPL     REPLConfig     `toml:"repl"`
	DiffTest DiffTestConfig `toml:"difftest"`
}

type REPLConfig struct {
	// History is the REPL history file. Defaults to
	// $XDG_DATA_HOME/msdscript/history.
	History string `toml:"history,omitempty"`
}

type DiffTestConfig struct {
	// Iterations is the number of generated expressions to try.
	Iterations int `toml:"iterations"`

	// Timeout bounds each subprocess run, e.g. "5s".
	Timeout string `toml:"timeout"`

	// Seed for the expression generator. Zero picks a seed from the clock.
	Seed int64 `toml:"seed"`
}

// TimeoutDuration parses Timeout.
func (c DiffTestConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("difftest timeout: %w", err)
	}
	return d, nil
}

// DefaultProjectConfig returns the configuration used when no
// msdscript.toml is found.
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Mode: ModeInterp,
		DiffTest: DiffTestConfig{
			Iterations: 100,
			Timeout:    "5s",
		},
	}
}

// LoadProjectConfig loads a msdscript.toml file from the given path. Keys the
// file leaves out keep their defaults.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	config := DefaultProjectConfig()
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("ignoring unknown config key", "file", path, "key", key.String())
	}
	if _, err := config.DiffTest.TimeoutDuration(); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return config, nil
}

// FindProjectConfig searches for a msdscript.toml file starting from dir and
// walking up to parent directories. Returns the path and the parsed config,
// or ("", nil, nil) if not found.
func FindProjectConfig(dir string) (string, *ProjectConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(path); err == nil {
			config, err := LoadProjectConfig(path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}

		// Stop at .git boundary
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}

// ApplyEnv overrides config fields from MSDSCRIPT_* environment variables.
func (c *ProjectConfig) ApplyEnv() error {
	if v := os.Getenv("MSDSCRIPT_MODE"); v != "" {
		mode, err := ParseMode(v)
		if err != nil {
			return fmt.Errorf("MSDSCRIPT_MODE: %w", err)
		}
		c.Mode = mode
	}
	if v := os.Getenv("MSDSCRIPT_DIFFTEST_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MSDSCRIPT_DIFFTEST_ITERATIONS: %w", err)
		}
		c.DiffTest.Iterations = n
	}
	if v := os.Getenv("MSDSCRIPT_DIFFTEST_TIMEOUT"); v != "" {
		c.DiffTest.Timeout = v
		if _, err := c.DiffTest.TimeoutDuration(); err != nil {
			return fmt.Errorf("MSDSCRIPT_DIFFTEST_TIMEOUT: %w", err)
		}
	}
	return nil
}

// HistoryPath returns the REPL history file, respecting XDG_DATA_HOME
// (default ~/.local/share/msdscript/history).
func (c *ProjectConfig) HistoryPath() string {
	if c.REPL.History != "" {
		return c.REPL.History
	}
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "msdscript_history")
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "msdscript", "history")
}
