// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package config

import (
	"net"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Storage  StorageConfig  `koanf:"storage"`
	Tracker  TrackerConfig  `koanf:"tracker"`
	Cache    CacheConfig    `koanf:"cache"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	SetupPath       string        `koanf:"setup_path"`  // Client redirect target when setup is incomplete
	Environment     string        `koanf:"environment"` // "development" or "production"
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SecurityConfig holds session, CORS and rate limiting settings
type SecurityConfig struct {
	SessionTTL             time.Duration `koanf:"session_ttl"`
	SessionCookieName      string        `koanf:"session_cookie_name"`
	SessionCookieSecure    bool          `koanf:"session_cookie_secure"`
	SessionCleanupInterval time.Duration `koanf:"session_cleanup_interval"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// Login gets its own, stricter limit on top of the lockout.
	LoginRateLimitReqs   int           `koanf:"login_rate_limit_reqs"`
	LoginRateLimitWindow time.Duration `koanf:"login_rate_limit_window"`

	Lockout LockoutConfig `koanf:"lockout"`
}

// LockoutConfig controls per-client lockout after failed logins.
type LockoutConfig struct {
	Enabled            bool          `koanf:"enabled"`
	MaxAttempts        int           `koanf:"max_attempts"`
	Duration           time.Duration `koanf:"duration"`
	MaxDuration        time.Duration `koanf:"max_duration"`
	IncrementalLockout bool          `koanf:"incremental"`
}

// StorageConfig holds on-disk locations.
type StorageConfig struct {
	// DataDir holds the BadgerDB directory. Empty disables persistence:
	// sessions and the stats cache are then kept in memory.
	DataDir string `koanf:"data_dir"`

	// SecretsPath is the YAML file with the setup state and credential records.
	SecretsPath string `koanf:"secrets_path"`

	// SessionStore is "memory" or "badger".
	SessionStore string `koanf:"session_store"`
}

// BadgerPath returns the BadgerDB directory under DataDir.
func (s StorageConfig) BadgerPath() string {
	if s.DataDir == "" {
		return ""
	}
	return filepath.Join(s.DataDir, "badger")
}

// TrackerConfig holds settings for the upstream media tracker API.
type TrackerConfig struct {
	BaseURL  string `koanf:"base_url"`
	ClientID string `koanf:"client_id"`
	Username string `koanf:"username"`

	// RateLimit is the sustained request rate per second; Burst the bucket size.
	RateLimit float64       `koanf:"rate_limit"`
	Burst     int           `koanf:"burst"`
	Timeout   time.Duration `koanf:"timeout"`

	// Circuit breaker trips after BreakerFailures consecutive failures and
	// stays open for BreakerTimeout.
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// CacheConfig holds stats cache settings.
type CacheConfig struct {
	// Store is "memory" or "badger".
	Store      string        `koanf:"store"`
	StatsTTL   time.Duration `koanf:"stats_ttl"`
	WatchedTTL time.Duration `koanf:"watched_ttl"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration with the following precedence (highest to lowest):
//  1. Environment variables
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Built-in defaults
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
