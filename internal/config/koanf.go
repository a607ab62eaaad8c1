// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/watchstats/config.yaml",
	"/etc/watchstats/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3857,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			SetupPath:       "/setup",
			Environment:     "development",
		},
		Security: SecurityConfig{
			SessionTTL:             24 * time.Hour,
			SessionCookieName:      "watchstats_session",
			SessionCookieSecure:    false,
			SessionCleanupInterval: 10 * time.Minute,
			CORSOrigins:            []string{"*"},
			RateLimitReqs:          100,
			RateLimitWindow:        time.Minute,
			RateLimitDisabled:      false,
			LoginRateLimitReqs:     10,
			LoginRateLimitWindow:   time.Minute,
			Lockout: LockoutConfig{
				Enabled:            true,
				MaxAttempts:        5,
				Duration:           15 * time.Minute,
				MaxDuration:        24 * time.Hour,
				IncrementalLockout: true,
			},
		},
		Storage: StorageConfig{
			DataDir:      "/data",
			SecretsPath:  "/data/secrets.yaml",
			SessionStore: "badger",
		},
		Tracker: TrackerConfig{
			BaseURL:         "https://api.trakt.tv",
			ClientID:        "",
			Username:        "",
			RateLimit:       2,
			Burst:           4,
			Timeout:         15 * time.Second,
			BreakerFailures: 5,
			BreakerTimeout:  time.Minute,
		},
		Cache: CacheConfig{
			Store:      "badger",
			StatsTTL:   time.Hour,
			WatchedTTL: 6 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// HTTP_PORT -> server.port, TRAKT_CLIENT_ID -> tracker.client_id
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":          "server.port",
	"http_host":          "server.host",
	"http_read_timeout":  "server.read_timeout",
	"http_write_timeout": "server.write_timeout",
	"http_idle_timeout":  "server.idle_timeout",
	"shutdown_timeout":   "server.shutdown_timeout",
	"setup_path":         "server.setup_path",
	"environment":        "server.environment",

	// Security mappings
	"session_ttl":               "security.session_ttl",
	"session_cookie_name":       "security.session_cookie_name",
	"session_cookie_secure":     "security.session_cookie_secure",
	"session_cleanup_interval":  "security.session_cleanup_interval",
	"cors_origins":              "security.cors_origins",
	"rate_limit_requests":       "security.rate_limit_reqs",
	"rate_limit_window":         "security.rate_limit_window",
	"disable_rate_limit":        "security.rate_limit_disabled",
	"login_rate_limit_requests": "security.login_rate_limit_reqs",
	"login_rate_limit_window":   "security.login_rate_limit_window",
	"lockout_enabled":           "security.lockout.enabled",
	"lockout_max_attempts":      "security.lockout.max_attempts",
	"lockout_duration":          "security.lockout.duration",
	"lockout_max_duration":      "security.lockout.max_duration",
	"lockout_incremental":       "security.lockout.incremental",

	// Storage mappings
	"data_dir":      "storage.data_dir",
	"secrets_path":  "storage.secrets_path",
	"session_store": "storage.session_store",

	// Tracker mappings
	"trakt_api_url":          "tracker.base_url",
	"trakt_client_id":        "tracker.client_id",
	"trakt_username":         "tracker.username",
	"trakt_rate_limit":       "tracker.rate_limit",
	"trakt_burst":            "tracker.burst",
	"trakt_timeout":          "tracker.timeout",
	"trakt_breaker_failures": "tracker.breaker_failures",
	"trakt_breaker_timeout":  "tracker.breaker_timeout",

	// Cache mappings
	"cache_store":       "cache.store",
	"cache_stats_ttl":   "cache.stats_ttl",
	"cache_watched_ttl": "cache.watched_ttl",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped keys return "" so that unrelated environment variables are ignored.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DATA_DIR -> storage.data_dir
//   - TRAKT_CLIENT_ID -> tracker.client_id
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
