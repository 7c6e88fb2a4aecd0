package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching Default()
	v.SetDefault("directory.url", "http://localhost:8080")
	v.SetDefault("directory.request_timeout", "30s")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("refresh.schedule", "@every 15m")
	v.SetDefault("export.dir", "./reports")

	// Bind environment variables with GS_ prefix
	v.SetEnvPrefix("GS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check: reject credentials in config files
	// Tokens must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		DirectoryURL:    v.GetString("directory.url"),
		RequestTimeout:  v.GetDuration("directory.request_timeout"),
		CacheBackend:    v.GetString("cache.backend"),
		CacheTTL:        v.GetDuration("cache.ttl"),
		RedisAddr:       v.GetString("cache.redis_addr"),
		RefreshSchedule: v.GetString("refresh.schedule"),
		ExportDir:       v.GetString("export.dir"),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks URL presence, positive durations and a known cache backend.
func validate(cfg *Config) error {
	if cfg.DirectoryURL == "" {
		return fmt.Errorf("directory.url must not be empty")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("directory.request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	switch cfg.CacheBackend {
	case "memory", "redis", "db":
	default:
		return fmt.Errorf("cache.backend must be memory, redis or db, got %q", cfg.CacheBackend)
	}
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %v", cfg.CacheTTL)
	}
	if cfg.RefreshSchedule == "" {
		return fmt.Errorf("refresh.schedule must not be empty")
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only credentials.
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("api_token") || v.IsSet("directory.api_token") {
		return fmt.Errorf("API tokens not allowed in config files (use GS_API_TOKEN environment variable)")
	}
	return nil
}
