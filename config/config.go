// Package config loads planmesh settings from a YAML file with PLANMESH_*
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Router  RouterConfig  `yaml:"router"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// StorageConfig selects where sessions, task states and preferences live.
type StorageConfig struct {
	Backend    string `yaml:"backend"` // memory, file, sqlite
	Dir        string `yaml:"dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// RouterConfig tunes agent dispatch.
type RouterConfig struct {
	AgentTimeout   string  `yaml:"agent_timeout"`
	ParallelFanOut bool    `yaml:"parallel_fan_out"`
	DefaultBudget  float64 `yaml:"default_budget"`
	TripLeadDays   int     `yaml:"trip_lead_days"`
	TripNights     int     `yaml:"trip_nights"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level   string `yaml:"level"`   // debug, info, warn, error
	Format  string `yaml:"format"`  // json, text
	Backend string `yaml:"backend"` // slog, zap
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
		},
		Storage: StorageConfig{
			Backend:    BackendMemory,
			Dir:        "data",
			SQLitePath: "data/planmesh.db",
		},
		Router: RouterConfig{
			AgentTimeout:  "30s",
			DefaultBudget: 2000,
			TripLeadDays:  30,
			TripNights:    7,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "text",
			Backend: "slog",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty or missing path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"PLANMESH_ADDR":            &c.Server.Addr,
		"PLANMESH_STORAGE_BACKEND": &c.Storage.Backend,
		"PLANMESH_DATA_DIR":        &c.Storage.Dir,
		"PLANMESH_SQLITE_PATH":     &c.Storage.SQLitePath,
		"PLANMESH_AGENT_TIMEOUT":   &c.Router.AgentTimeout,
		"PLANMESH_LOG_LEVEL":       &c.Logging.Level,
		"PLANMESH_LOG_FORMAT":      &c.Logging.Format,
		"PLANMESH_LOG_BACKEND":     &c.Logging.Backend,
	}
	for env, dst := range strs {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("PLANMESH_PARALLEL_FAN_OUT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid PLANMESH_PARALLEL_FAN_OUT: %w", err)
		}
		c.Router.ParallelFanOut = b
	}
	if v := os.Getenv("PLANMESH_DEFAULT_BUDGET"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid PLANMESH_DEFAULT_BUDGET: %w", err)
		}
		c.Router.DefaultBudget = f
	}
	return nil
}

// Validate checks enumerations and numeric ranges.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("invalid storage backend: %s (valid: memory, file, sqlite)", c.Storage.Backend)
	}
	if c.Storage.Backend != BackendMemory && c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required for the %s backend", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.SQLitePath == "" {
		return fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
	}
	if _, err := time.ParseDuration(c.Router.AgentTimeout); c.Router.AgentTimeout != "" && err != nil {
		return fmt.Errorf("invalid router.agent_timeout: %w", err)
	}
	if c.Router.DefaultBudget < 0 {
		return fmt.Errorf("router.default_budget must not be negative")
	}
	if c.Router.TripLeadDays < 0 || c.Router.TripNights < 0 {
		return fmt.Errorf("router.trip_lead_days and router.trip_nights must not be negative")
	}
	switch c.Logging.Backend {
	case "", "slog", "zap":
	default:
		return fmt.Errorf("invalid logging backend: %s (valid: slog, zap)", c.Logging.Backend)
	}
	return nil
}

// GetAgentTimeout returns the agent timeout as a duration.
func (c *Config) GetAgentTimeout() time.Duration {
	d, err := time.ParseDuration(c.Router.AgentTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetShutdownTimeout returns the server shutdown grace period.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// StateDir is where the file backend keeps task states.
func (c *Config) StateDir() string { return filepath.Join(c.Storage.Dir, "state") }

// PreferenceDir is where the file and sqlite backends keep user profiles.
func (c *Config) PreferenceDir() string { return filepath.Join(c.Storage.Dir, "preferences") }
