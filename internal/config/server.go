package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "AUDITMARKS_SERVER_HOST"
	EnvServerPort              = "AUDITMARKS_SERVER_PORT"
	EnvServerReadTimeout       = "AUDITMARKS_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "AUDITMARKS_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "AUDITMARKS_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "AUDITMARKS_SERVER_IDLE_TIMEOUT"
)

// ServerConfig holds HTTP listener settings. Timeouts are Go duration
// strings; workbook uploads and stamped downloads need the generous
// read and write defaults.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration       { return duration(c.ReadTimeout) }
func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration { return duration(c.ReadHeaderTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration      { return duration(c.WriteTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration       { return duration(c.IdleTimeout) }

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	mergeString(&c.Host, overlay.Host)
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	mergeString(&c.ReadTimeout, overlay.ReadTimeout)
	mergeString(&c.ReadHeaderTimeout, overlay.ReadHeaderTimeout)
	mergeString(&c.WriteTimeout, overlay.WriteTimeout)
	mergeString(&c.IdleTimeout, overlay.IdleTimeout)
}

func (c *ServerConfig) loadDefaults() {
	c.Host = orDefault(c.Host, "0.0.0.0")
	if c.Port == 0 {
		c.Port = 8080
	}
	c.ReadTimeout = orDefault(c.ReadTimeout, "1m")
	c.ReadHeaderTimeout = orDefault(c.ReadHeaderTimeout, "10s")
	c.WriteTimeout = orDefault(c.WriteTimeout, "15m")
	c.IdleTimeout = orDefault(c.IdleTimeout, "2m")
}

func (c *ServerConfig) loadEnv() {
	mergeString(&c.Host, os.Getenv(EnvServerHost))
	if port, err := strconv.Atoi(os.Getenv(EnvServerPort)); err == nil {
		c.Port = port
	}
	mergeString(&c.ReadTimeout, os.Getenv(EnvServerReadTimeout))
	mergeString(&c.ReadHeaderTimeout, os.Getenv(EnvServerReadHeaderTimeout))
	mergeString(&c.WriteTimeout, os.Getenv(EnvServerWriteTimeout))
	mergeString(&c.IdleTimeout, os.Getenv(EnvServerIdleTimeout))
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for name, v := range map[string]string{
		"read_timeout":        c.ReadTimeout,
		"read_header_timeout": c.ReadHeaderTimeout,
		"write_timeout":       c.WriteTimeout,
		"idle_timeout":        c.IdleTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
