// Package config loads the insulog configuration.
//
// Sources, lowest priority first:
//
//  1. Built-in defaults (Default)
//  2. A YAML file, if present
//  3. A .env file, if present
//  4. Process environment variables
//
// A missing YAML or .env file is not an error; a malformed one is.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all insulog configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int    `yaml:"port"`
	ShutdownTimeout string `yaml:"shutdown_timeout"` // e.g. "30s"
}

// DatabaseConfig configures SQLite.
type DatabaseConfig struct {
	Path string `yaml:"path"` // file path, or ":memory:"
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// RateLimitConfig throttles anonymous account creation per client IP.
type RateLimitConfig struct {
	SignupPerMinute float64 `yaml:"signup_per_minute"`
	SignupBurst     int     `yaml:"signup_burst"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: "30s",
		},
		Database: DatabaseConfig{
			Path: "data/insulog.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		RateLimit: RateLimitConfig{
			SignupPerMinute: 5,
			SignupBurst:     3,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path and the dotenv
// file at envFile, then the environment. Either path may be empty to skip
// that source.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults stand
		case err != nil:
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parsing %s: %w", path, err)
			}
		}
	}

	// godotenv.Read returns the file as a map instead of exporting it into
	// the process environment, so real environment variables always win and
	// loading config has no global side effects.
	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: reading %s: %w", envFile, err)
		default:
			dotenv = m
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from environment-style variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PORT %q is not a number", v)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("SHUTDOWN_TIMEOUT"); ok {
		c.Server.ShutdownTimeout = v
	}
	if v, ok := lookup("DB_PATH"); ok {
		c.Database.Path = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		c.Logging.Format = v
	}
	if v, ok := lookup("SIGNUP_RATE_PER_MINUTE"); ok {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: SIGNUP_RATE_PER_MINUTE %q is not a number", v)
		}
		c.RateLimit.SignupPerMinute = rate
	}
	if v, ok := lookup("SIGNUP_BURST"); ok {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: SIGNUP_BURST %q is not a number", v)
		}
		c.RateLimit.SignupBurst = burst
	}
	return nil
}

// Validate checks the configuration for mistakes that would only show up
// later as confusing runtime failures.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Server.Port)
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("config: shutdown_timeout: %w", err)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("config: database path is required")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log format %q must be text or json", c.Logging.Format)
	}
	if c.RateLimit.SignupPerMinute <= 0 {
		return fmt.Errorf("config: signup_per_minute must be positive, got %g", c.RateLimit.SignupPerMinute)
	}
	if c.RateLimit.SignupBurst < 1 {
		return fmt.Errorf("config: signup_burst must be at least 1, got %d", c.RateLimit.SignupBurst)
	}
	return nil
}

// GetShutdownTimeout returns the shutdown drain period as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LogLevel parses Logging.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", c.Logging.Level, err)
	}
	return level, nil
}

// NewLogger builds the application logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
