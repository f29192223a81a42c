package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/yamaphone/internal/flagx"
	"github.com/dmitrijs2005/yamaphone/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Durations are timex.Duration, so they may be strings like "15s" or
// integer nanoseconds.
type JsonConfig struct {
	BackendURL     string         `json:"backend_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	TokenTTL       timex.Duration `json:"token_ttl"`
	DatabasePath   string         `json:"database_path"`
	LogLevel       string         `json:"log_level"`
	PhoneRegion    string         `json:"phone_region"`
}

// parseJson overlays cfg with the fields present in the JSON file given by
// -c or -config in args. Nothing happens when no file is named. Read and
// unmarshal errors panic.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.ConfigFile(args)
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BackendURL != "" {
		cfg.BackendURL = jc.BackendURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.TokenTTL.Duration != 0 {
		cfg.TokenTTL = jc.TokenTTL.Duration
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.PhoneRegion != "" {
		cfg.PhoneRegion = jc.PhoneRegion
	}
}
