// Package config provides configuration management for Groupsight commands.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds configuration for the directory client, snapshot cache and
// scheduled refresh.
type Config struct {
	// DirectoryURL is the base URL of the upstream identity API.
	DirectoryURL string

	// RequestTimeout bounds each directory API call.
	RequestTimeout time.Duration

	// CacheBackend selects the snapshot cache: memory or redis.
	CacheBackend string

	// CacheTTL governs snapshot freshness; expired entries are re-fetched.
	CacheTTL time.Duration

	// RedisAddr is the redis endpoint when CacheBackend is redis.
	RedisAddr string

	// RefreshSchedule is the cron spec for background snapshot refresh.
	RefreshSchedule string

	// ExportDir receives CSV attribution reports.
	ExportDir string
}

// Default returns configuration with default values.
func Default() *Config {
	return &Config{
		DirectoryURL:    "http://localhost:8080",
		RequestTimeout:  30 * time.Second,
		CacheBackend:    "memory",
		CacheTTL:        5 * time.Minute,
		RedisAddr:       "localhost:6379",
		RefreshSchedule: "@every 15m",
		ExportDir:       "./reports",
	}
}

// APIToken reads the directory API bearer token from the environment.
// Tokens are environment-only: config files must never carry credentials.
func APIToken() (string, error) {
	token := strings.TrimSpace(os.Getenv("GS_API_TOKEN"))
	if token == "" {
		return "", fmt.Errorf("no API token configured (set GS_API_TOKEN environment variable)")
	}
	return token, nil
}
