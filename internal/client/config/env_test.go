package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	cfg := defaults()
	parseEnv(cfg, env(map[string]string{
		EnvBackendURL:     "http://env:1",
		EnvRequestTimeout: "1m",
		EnvTokenTTL:       "12h",
		EnvDatabasePath:   "env.db",
		EnvLogLevel:       "error",
		EnvPhoneRegion:    "DE",
	}))

	assert.Equal(t, "http://env:1", cfg.BackendURL)
	assert.Equal(t, time.Minute, cfg.RequestTimeout)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "env.db", cfg.DatabasePath)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "DE", cfg.PhoneRegion)
}

func TestParseEnv_EmptyKeepsValues(t *testing.T) {
	cfg := defaults()
	parseEnv(cfg, env(nil))
	assert.Equal(t, defaults(), cfg)

	parseEnv(cfg, nil)
	assert.Equal(t, defaults(), cfg)
}

func TestParseEnv_BadDurationPanics(t *testing.T) {
	cfg := defaults()
	require.Panics(t, func() {
		parseEnv(cfg, env(map[string]string{EnvTokenTTL: "tomorrow"}))
	})
}
