package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "SHUTDOWN_TIMEOUT", "LOG_LEVEL", "STORE_BACKEND", "DB_PATH",
	"SEED_DATA", "VIEWER_ID", "BCRYPT_COST",
}

// clearEnv blanks every key Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		LogLevel:        slog.LevelInfo,
		StoreBackend:    BackendMemory,
		DBPath:          "data/photofeed.db",
		SeedData:        true,
		ViewerID:        1,
		BCryptCost:      10,
	}, cfg)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("DB_PATH", "/tmp/feed.db")
	t.Setenv("SEED_DATA", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("VIEWER_ID", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, "/tmp/feed.db", cfg.DBPath)
	assert.False(t, cfg.SeedData)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, int64(3), cfg.ViewerID)
}

func TestLoad_ReportsEveryParseError(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "eighty")
	t.Setenv("SEED_DATA", "maybe")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "SEED_DATA")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port: 8080, ShutdownTimeout: time.Second, StoreBackend: BackendMemory,
			ViewerID: 1, BCryptCost: 10,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"port out of range", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"unknown backend", func(c *Config) { c.StoreBackend = "postgres" }, "STORE_BACKEND"},
		{"sqlite without path", func(c *Config) { c.StoreBackend = BackendSQLite; c.DBPath = "" }, "DB_PATH"},
		{"zero viewer", func(c *Config) { c.ViewerID = 0 }, "VIEWER_ID"},
		{"bcrypt cost too high", func(c *Config) { c.BCryptCost = 40 }, "BCRYPT_COST"},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, "SHUTDOWN_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
