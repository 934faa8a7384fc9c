// Package config loads the CLI configuration from a YAML file with
// FORMLAYOUT_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverFS       = "fs"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Environment overrides.
const (
	EnvStoreDriver = "FORMLAYOUT_STORE_DRIVER"
	EnvStoreRoot   = "FORMLAYOUT_STORE_ROOT"
	EnvStoreDSN    = "FORMLAYOUT_STORE_DSN"
	EnvOrg         = "FORMLAYOUT_ORG"
	EnvApp         = "FORMLAYOUT_APP"
	EnvMaxDepth    = "FORMLAYOUT_MAX_DEPTH"
	EnvLogLevel    = "FORMLAYOUT_LOG_LEVEL"
	EnvLogFormat   = "FORMLAYOUT_LOG_FORMAT"
	EnvLogFile     = "FORMLAYOUT_LOG_FILE"
)

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	// Root is the repository root for the fs driver.
	Root string `yaml:"root"`
	// DSN is the data source name for sql drivers.
	DSN string `yaml:"dsn"`
}

// EditorConfig holds editing limits.
type EditorConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// LoggingConfig mirrors internal/log.Options.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Config is the full CLI configuration.
type Config struct {
	Org     string        `yaml:"org"`
	App     string        `yaml:"app"`
	Store   StoreConfig   `yaml:"store"`
	Editor  EditorConfig  `yaml:"editor"`
	Logging LoggingConfig `yaml:"logging"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Store:   StoreConfig{Driver: DriverFS, Root: "."},
		Editor:  EditorConfig{MaxDepth: 3},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (when non-empty and present) over the defaults, then
// applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate checks driver specific requirements.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverFS:
		if strings.TrimSpace(c.Store.Root) == "" {
			return errors.New("config: store.root is required for the fs driver")
		}
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return fmt.Errorf("config: store.dsn is required for the %s driver", c.Store.Driver)
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Editor.MaxDepth < 0 {
		return errors.New("config: editor.max_depth must not be negative")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			*dst = value
		}
	}
	setString(EnvStoreDriver, &cfg.Store.Driver)
	setString(EnvStoreRoot, &cfg.Store.Root)
	setString(EnvStoreDSN, &cfg.Store.DSN)
	setString(EnvOrg, &cfg.Org)
	setString(EnvApp, &cfg.App)
	setString(EnvLogLevel, &cfg.Logging.Level)
	setString(EnvLogFormat, &cfg.Logging.Format)
	setString(EnvLogFile, &cfg.Logging.File)

	if value := os.Getenv(EnvMaxDepth); value != "" {
		depth, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvMaxDepth, err)
		}
		cfg.Editor.MaxDepth = depth
	}
	return nil
}
