package config

import (
	"os"
	"strings"
	"time"
)

// Config holds runtime settings for the yamaphone console.
//
// Fields:
//   - BackendURL: origin of the REST backend, without a trailing slash.
//   - RequestTimeout: deadline of every backend request; zero disables it.
//   - TokenTTL: lifetime of the persisted credential.
//   - DatabasePath: SQLite file holding the persisted credential.
//   - LogLevel: debug, info, warn or error.
//   - PhoneRegion: ISO country code for reading national phone numbers.
type Config struct {
	BackendURL     string
	RequestTimeout time.Duration
	TokenTTL       time.Duration
	DatabasePath   string
	LogLevel       string
	PhoneRegion    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://localhost:3015"
	c.RequestTimeout = 15 * time.Second
	c.TokenTTL = 24 * time.Hour
	c.DatabasePath = "yamaphone.db"
	c.LogLevel = "info"
}

// LoadConfig builds a Config from the process arguments and environment.
func LoadConfig() *Config {
	return Load(os.Args[1:], os.Getenv)
}

// Load applies defaults, then the JSON file named by -c/-config in args,
// then the environment, then flags. Later sources take precedence.
// Invalid values panic.
func Load(args []string, getenv func(string) string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg, getenv)
	parseFlags(cfg, args)
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	return cfg
}
