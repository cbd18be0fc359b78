package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PATH", "LOG_LEVEL", "LOG_FORMAT", "GIN_MODE", "RATE_LIMIT", "RATE_WINDOW"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	// keep a developer's .env out of the tests
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Port)
	assert.Equal(t, "./data/gps_data.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, 120, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DB_PATH", "/var/lib/tracker/gps.db")
	t.Setenv("RATE_LIMIT", "10")
	t.Setenv("RATE_WINDOW", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "/var/lib/tracker/gps.db", cfg.DBPath)
	assert.Equal(t, 10, cfg.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.RateWindow)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("LOG_LEVEL=debug\nGIN_MODE=debug\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "debug", cfg.GinMode)
}

func TestLoadRejectsInvalidRate(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT", "zero")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("RATE_LIMIT", "5")
	t.Setenv("RATE_WINDOW", "-1s")
	_, err = Load()
	assert.Error(t, err)
}
