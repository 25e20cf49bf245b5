// Package config handles the XDG configuration directory, the config file
// and the environment overrides for the API connection.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tarefas/internal/wire"
)

const (
	// AppName is the application directory name.
	AppName = "tarefas"

	// ConfigFile is the config filename inside the config directory.
	ConfigFile = "config.json"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 5 * time.Second

	// DefaultRetries is the number of extra attempts for idempotent requests.
	DefaultRetries = 2

	// Environment overrides.
	EnvBaseURL   = "TAREFAS_BASE_URL"
	EnvTimeoutMS = "TAREFAS_TIMEOUT_MS"
)

var (
	// ErrNoBaseURL is returned by Validate when no API base URL is configured.
	ErrNoBaseURL = errors.New("no base URL configured")

	// ErrInvalid wraps every other configuration problem.
	ErrInvalid = errors.New("invalid configuration")
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// BaseURL is the API root, e.g. http://192.168.1.10:3000.
	// A trailing /tarefas is accepted.
	BaseURL string

	// Timeout bounds every single request.
	Timeout time.Duration

	// Retries is the number of extra attempts for GET and DELETE.
	Retries int

	// Dialect selects the JSON representation sent to the server.
	Dialect wire.Dialect

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Log receives diagnostics. Nil discards them.
	Log *slog.Logger
}

// fileConfig is the on-disk form of config.json.
type fileConfig struct {
	BaseURL   string `json:"base_url,omitempty"`
	TimeoutMS int    `json:"timeout_ms,omitempty"`
	Dialect   string `json:"dialect,omitempty"`
	Retries   *int   `json:"retries,omitempty"`
}

// New creates a new Config from defaults, the config file and the environment.
// If configDir is empty, uses XDG_CONFIG_HOME/tarefas or $HOME/.config/tarefas.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	cfg := &Config{
		Dir:     dir,
		Timeout: DefaultTimeout,
		Retries: DefaultRetries,
		Dialect: wire.Status,
	}

	if err := cfg.load(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Path returns the path to the config file.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// Logger returns the configured logger or one that discards everything.
func (c *Config) Logger() *slog.Logger {
	if c.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Log
}

// Validate checks that the connection settings are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrNoBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: base URL: %w", ErrInvalid, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: base URL scheme must be http or https: %s", ErrInvalid, c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: base URL has no host: %s", ErrInvalid, c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive: %s", ErrInvalid, c.Timeout)
	}
	if c.Retries < 0 {
		return fmt.Errorf("%w: retries must not be negative: %d", ErrInvalid, c.Retries)
	}
	return nil
}

// load reads config.json if it exists. A missing file is not an error.
func (c *Config) load() error {
	data, err := os.ReadFile(c.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("%w: failed to parse %s: %w", ErrInvalid, c.Path(), err)
	}

	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	if fc.TimeoutMS > 0 {
		c.Timeout = time.Duration(fc.TimeoutMS) * time.Millisecond
	}
	if fc.Retries != nil {
		c.Retries = *fc.Retries
	}
	if fc.Dialect != "" {
		d, err := wire.ParseDialect(fc.Dialect)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, c.Path(), err)
		}
		c.Dialect = d
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvTimeoutMS); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return fmt.Errorf("%w: %s must be a positive number of milliseconds: %s", ErrInvalid, EnvTimeoutMS, v)
		}
		c.Timeout = time.Duration(ms) * time.Millisecond
	}
	return nil
}

// Keys returns the settable config file keys, sorted.
func Keys() []string {
	return []string{"base_url", "dialect", "retries", "timeout_ms"}
}

// Set validates value and writes key to the config file, keeping the
// other keys already stored there.
func (c *Config) Set(key, value string) error {
	var fc fileConfig
	data, err := os.ReadFile(c.Path())
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to read config file: %w", err)
	}

	value = strings.TrimSpace(value)
	switch key {
	case "base_url":
		probe := Config{BaseURL: value, Timeout: DefaultTimeout}
		if err := probe.Validate(); err != nil {
			return err
		}
		fc.BaseURL = value
		c.BaseURL = value
	case "timeout_ms":
		ms, err := strconv.Atoi(value)
		if err != nil || ms <= 0 {
			return fmt.Errorf("invalid timeout_ms: %s", value)
		}
		fc.TimeoutMS = ms
		c.Timeout = time.Duration(ms) * time.Millisecond
	case "dialect":
		d, err := wire.ParseDialect(value)
		if err != nil {
			return err
		}
		fc.Dialect = string(d)
		c.Dialect = d
	case "retries":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid retries: %s", value)
		}
		fc.Retries = &n
		c.Retries = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	out, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.Path(), append(out, '\n'), 0600)
}
