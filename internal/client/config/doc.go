// Package config loads runtime configuration for the yamaphone console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected with -c path or --config=path.
//  3. YAMAPHONE_* environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   backend origin
//	-t int      request timeout (seconds)
//	-d string   local database path
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
//	{
//	  "backend_url": "http://localhost:3015",
//	  "request_timeout": "15s",
//	  "token_ttl": "24h",
//	  "database_path": "yamaphone.db",
//	  "log_level": "info",
//	  "phone_region": "GB"
//	}
package config
