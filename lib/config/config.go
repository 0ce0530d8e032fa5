// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/sshield/lib/sealed"
)

// EnvConfig names the environment variable that overrides the config
// file location.
const EnvConfig = "SSHIELD_CONFIG"

// DefaultPromptSeconds is the confirmation window written to a new
// config file.
const DefaultPromptSeconds = 60

// Error reports a configuration file that could not be read, parsed,
// or validated.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Config is the sshield configuration.
type Config struct {
	// Database is the key store file.
	Database string `yaml:"database"`

	// Prompt is the confirmation window in seconds. After the user
	// approves a signature, further signatures within this many
	// seconds are approved silently. Zero or negative disables
	// prompting entirely.
	Prompt int `yaml:"prompt"`

	// Socket is the agent socket path. The control socket lives beside
	// it with a ".ctl" suffix.
	Socket string `yaml:"socket"`

	// ScryptWorkFactor is the scrypt log2(N) used when sealing keys.
	ScryptWorkFactor int `yaml:"scrypt_work_factor"`

	// Askpass is the confirmation helper run for sign prompts. It is
	// invoked with the prompt text as its only argument and
	// SSH_ASKPASS_PROMPT=confirm; exit status 0 means approve. Empty
	// means use $SSH_ASKPASS, then ssh-askpass from PATH.
	Askpass string `yaml:"askpass,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// path is the file this config was loaded from.
	path string
}

// Default returns the configuration written to a new config file.
func Default() *Config {
	return &Config{
		Database:         filepath.Join("${XDG_DATA_HOME:-${HOME}/.local/share}", "sshield", "keys.db"),
		Prompt:           DefaultPromptSeconds,
		Socket:           filepath.Join("${XDG_RUNTIME_DIR:-/tmp}", "sshield", "agent.sock"),
		ScryptWorkFactor: sealed.DefaultWorkFactor,
		LogLevel:         "info",
	}
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// PromptWindow returns the confirmation window, or zero when prompting
// is disabled.
func (c *Config) PromptWindow() time.Duration {
	if c.Prompt <= 0 {
		return 0
	}
	return time.Duration(c.Prompt) * time.Second
}

// ControlSocket returns the control socket path for the agent socket.
func (c *Config) ControlSocket() string {
	return c.Socket + ".ctl"
}

// Level parses LogLevel.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DefaultPath returns the config file location when SSHIELD_CONFIG is
// unset.
func DefaultPath() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "sshield", "sshield.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating config: %w", err)
	}
	return filepath.Join(home, ".config", "sshield", "sshield.yaml"), nil
}

// Load locates, loads, and validates the configuration. A missing file
// at the default location is created with Default values.
func Load() (*Config, error) {
	if path := os.Getenv(EnvConfig); path != "" {
		return LoadFile(path)
	}

	path, err := DefaultPath()
	if err != nil {
		return nil, &Error{Path: "(default)", Err: err}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := WriteDefault(path); err != nil {
			return nil, err
		}
	}
	return LoadFile(path)
}

// LoadFile loads and validates the configuration at path. Fields the
// file omits keep their Default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return cfg, nil
}

// WriteDefault writes Default values to path, creating the directory.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return &Error{Path: path, Err: err}
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return &Error{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return &Error{Path: path, Err: err}
	}
	return nil
}

func (c *Config) expandVariables() {
	c.Database = expandVars(c.Database)
	c.Socket = expandVars(c.Socket)
	c.Askpass = expandVars(c.Askpass)
}

// varPattern matches ${VAR} and ${VAR:-default}. Defaults may
// themselves contain one nested ${VAR}.
var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^{}]|\$\{[^{}]*\})*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if strings.Contains(parts[2], "${") {
			return expandVars(parts[2])
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database is required"))
	} else if !filepath.IsAbs(c.Database) {
		errs = append(errs, fmt.Errorf("database must be an absolute path, got %q", c.Database))
	}

	if c.Socket == "" {
		errs = append(errs, fmt.Errorf("socket is required"))
	} else if !filepath.IsAbs(c.Socket) {
		errs = append(errs, fmt.Errorf("socket must be an absolute path, got %q", c.Socket))
	} else if len(c.ControlSocket()) >= 108 {
		errs = append(errs, fmt.Errorf("socket path %q is too long for a Unix socket", c.Socket))
	}

	if c.ScryptWorkFactor < 1 || c.ScryptWorkFactor > sealed.MaxWorkFactor {
		errs = append(errs, fmt.Errorf("scrypt_work_factor must be in [1, %d], got %d", sealed.MaxWorkFactor, c.ScryptWorkFactor))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
