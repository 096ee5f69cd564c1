// Package config loads server settings from environment variables.
//
// Every setting has a default so the server starts with no environment at
// all. cmd/server loads a .env file (if present) before calling Load.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	// Server
	Port            int
	ShutdownTimeout time.Duration
	LogLevel        slog.Level

	// Store
	StoreBackend string
	DBPath       string // only read by the sqlite backend
	SeedData     bool

	// Identity
	ViewerID   int64 // every request acts as this user
	BCryptCost int
}

// Load reads configuration from the environment and validates it.
// Values that fail to parse are reported together.
func Load() (*Config, error) {
	p := &parser{}
	cfg := &Config{
		Port:            p.getInt("PORT", 8080),
		ShutdownTimeout: p.getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		LogLevel:        p.getLevel("LOG_LEVEL", slog.LevelInfo),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		DBPath:       getEnv("DB_PATH", "data/photofeed.db"),
		SeedData:     p.getBool("SEED_DATA", true),

		ViewerID:   p.getInt64("VIEWER_ID", 1),
		BCryptCost: p.getInt("BCRYPT_COST", bcrypt.DefaultCost),
	}
	if err := errors.Join(p.errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	switch c.StoreBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMemory, BackendSQLite, c.StoreBackend))
	}
	if c.ViewerID < 1 {
		errs = append(errs, fmt.Errorf("VIEWER_ID must be positive, got %d", c.ViewerID))
	}
	if c.BCryptCost < bcrypt.MinCost || c.BCryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BCryptCost))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parser collects parse failures instead of stopping at the first one.
type parser struct {
	errs []error
}

func (p *parser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (p *parser) getInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return defaultValue
	}
	return n
}

func (p *parser) getInt64(key string, defaultValue int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, v, err)
		return defaultValue
	}
	return n
}

func (p *parser) getBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return defaultValue
	}
	return b
}

func (p *parser) getDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return defaultValue
	}
	return d
}

// getLevel accepts debug, info, warn or error (any case).
func (p *parser) getLevel(key string, defaultValue slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		p.fail(key, v, err)
		return defaultValue
	}
	return l
}
