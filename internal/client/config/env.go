package config

import (
	"fmt"
	"time"
)

const (
	EnvBackendURL     = "YAMAPHONE_BACKEND_URL"
	EnvRequestTimeout = "YAMAPHONE_REQUEST_TIMEOUT"
	EnvTokenTTL       = "YAMAPHONE_TOKEN_TTL"
	EnvDatabasePath   = "YAMAPHONE_DB"
	EnvLogLevel       = "YAMAPHONE_LOG_LEVEL"
	EnvPhoneRegion    = "YAMAPHONE_PHONE_REGION"
)

// parseEnv overlays cfg with the non-empty YAMAPHONE_* variables.
// Durations use time.ParseDuration syntax; a malformed one panics.
func parseEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		return
	}

	if v := getenv(EnvBackendURL); v != "" {
		cfg.BackendURL = v
	}
	if v := getenv(EnvRequestTimeout); v != "" {
		cfg.RequestTimeout = mustDuration(EnvRequestTimeout, v)
	}
	if v := getenv(EnvTokenTTL); v != "" {
		cfg.TokenTTL = mustDuration(EnvTokenTTL, v)
	}
	if v := getenv(EnvDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv(EnvPhoneRegion); v != "" {
		cfg.PhoneRegion = v
	}
}

func mustDuration(name, v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	return d
}
