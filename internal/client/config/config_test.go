package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	return &Config{
		BackendURL:     "http://localhost:3015",
		RequestTimeout: 15 * time.Second,
		TokenTTL:       24 * time.Hour,
		DatabasePath:   "yamaphone.db",
		LogLevel:       "info",
	}
}

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Empty(t, cmp.Diff(defaults(), &c))
}

func TestLoad_NoSources(t *testing.T) {
	cfg := Load(nil, env(nil))

	require.NotNil(t, cfg, "Load must not return nil")
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"backend_url":     "http://json:1",
		"request_timeout": "30s",
		"token_ttl":       "2h",
		"database_path":   filepath.Join("x", "json.db"),
		"log_level":       "warn",
		"phone_region":    "GB",
	})

	cfg := Load(
		[]string{"-c", path, "-a", "http://flag:3/", "whoami"},
		env(map[string]string{
			EnvBackendURL:     "http://env:2",
			EnvRequestTimeout: "45s",
			EnvLogLevel:       "debug",
		}),
	)

	want := &Config{
		BackendURL:     "http://flag:3",
		RequestTimeout: 45 * time.Second,
		TokenTTL:       2 * time.Hour,
		DatabasePath:   filepath.Join("x", "json.db"),
		LogLevel:       "debug",
		PhoneRegion:    "GB",
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_TrimsTrailingSlash(t *testing.T) {
	cfg := Load(nil, env(map[string]string{EnvBackendURL: "https://pbx.example//"}))
	assert.Equal(t, "https://pbx.example", cfg.BackendURL)
}
