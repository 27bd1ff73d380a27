package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/JaimeStill/auditmarks/pkg/database"
	"github.com/JaimeStill/auditmarks/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvAuditMarksEnv             = "AUDITMARKS_ENV"
	EnvAuditMarksShutdownTimeout = "AUDITMARKS_SHUTDOWN_TIMEOUT"
	EnvAuditMarksVersion         = "AUDITMARKS_VERSION"
	EnvAuditMarksLogLevel        = "AUDITMARKS_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	Host:            "AUDITMARKS_DB_HOST",
	Port:            "AUDITMARKS_DB_PORT",
	Name:            "AUDITMARKS_DB_NAME",
	User:            "AUDITMARKS_DB_USER",
	Password:        "AUDITMARKS_DB_PASSWORD",
	SSLMode:         "AUDITMARKS_DB_SSL_MODE",
	MaxOpenConns:    "AUDITMARKS_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "AUDITMARKS_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "AUDITMARKS_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "AUDITMARKS_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "AUDITMARKS_STORAGE_CONTAINER_NAME",
	ConnectionString: "AUDITMARKS_STORAGE_CONNECTION_STRING",
	ServiceURL:       "AUDITMARKS_STORAGE_SERVICE_URL",
}

// Config is the root configuration for the audit marks service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Marks           MarksConfig     `toml:"marks"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
	LogLevel        string          `toml:"log_level"`
}

// SlogLevel returns LogLevel as a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// Env returns the AUDITMARKS_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAuditMarksEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Marks.Merge(&overlay.Marks)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Marks.Finalize(); err != nil {
		return fmt.Errorf("marks: %w", err)
	}
	return nil
}
func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAuditMarksShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvAuditMarksVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvAuditMarksLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvAuditMarksEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
