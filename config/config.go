/*
Package config loads runtime configuration from the environment.

Values come from the process environment, optionally seeded from a
.env file by the entry point before Load runs. Every setting has a
working default so a bare `storefront serve` starts a complete local
instance.
*/
package config

import (
	"os"
	"strconv"
)

// Config holds all runtime settings.
type Config struct {
	// Storage
	DBPath  string // SQLite database path; ":memory:" for ephemeral
	DataDir string // Directory for file-backed storage and exports

	// HTTP
	Port int

	// Logging
	LogLevel  string // trace, debug, info, warn, error
	LogFormat string // console, json
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		DBPath:    getEnv("STOREFRONT_DB", "storefront.db"),
		DataDir:   getEnv("STOREFRONT_DATA_DIR", "./data"),
		Port:      getEnvInt("STOREFRONT_PORT", 8080),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
