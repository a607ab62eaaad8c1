// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSecurity,
		c.validateStorage,
		c.validateTracker,
		c.validateCache,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if !strings.HasPrefix(c.Server.SetupPath, "/") {
		return fmt.Errorf("SETUP_PATH must be an absolute path, got %q", c.Server.SetupPath)
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if c.Security.SessionTTL < time.Minute {
		return fmt.Errorf("SESSION_TTL must be at least 1m")
	}
	if c.Security.SessionCookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME is required")
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	return c.validateLockout()
}

// validateCORS rejects wildcard CORS in production, where the session
// cookie would otherwise be usable from any origin.
func (c *Config) validateCORS() error {
	if c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production. " +
			"Either set specific origins: CORS_ORIGINS=https://stats.example.com " +
			"or use ENVIRONMENT=development for testing purposes")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if CORS configuration has security concerns
// that should be logged at startup
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.hasWildcardCORS()
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	limits := []struct {
		name   string
		reqs   int
		window time.Duration
	}{
		{"RATE_LIMIT", c.Security.RateLimitReqs, c.Security.RateLimitWindow},
		{"LOGIN_RATE_LIMIT", c.Security.LoginRateLimitReqs, c.Security.LoginRateLimitWindow},
	}
	for _, l := range limits {
		if l.reqs < minRateLimitRequests || l.reqs > maxRateLimitRequests {
			return fmt.Errorf("%s_REQUESTS must be between %d and %d", l.name, minRateLimitRequests, maxRateLimitRequests)
		}
		if l.window < minRateLimitWindow || l.window > maxRateLimitWindow {
			return fmt.Errorf("%s_WINDOW must be between %v and %v", l.name, minRateLimitWindow, maxRateLimitWindow)
		}
	}
	return nil
}

// validateLockout validates the failed-login lockout knobs
func (c *Config) validateLockout() error {
	l := c.Security.Lockout
	if !l.Enabled {
		return nil
	}
	if l.MaxAttempts < 1 {
		return fmt.Errorf("LOCKOUT_MAX_ATTEMPTS must be at least 1")
	}
	if l.Duration <= 0 {
		return fmt.Errorf("LOCKOUT_DURATION must be positive")
	}
	if l.MaxDuration < l.Duration {
		return fmt.Errorf("LOCKOUT_MAX_DURATION (%v) must not be less than LOCKOUT_DURATION (%v)", l.MaxDuration, l.Duration)
	}
	return nil
}

// validStoreTypes defines the allowed session and cache backends
var validStoreTypes = map[string]bool{
	"memory": true,
	"badger": true,
}

// validateStorage validates storage paths and backends
func (c *Config) validateStorage() error {
	if c.Storage.SecretsPath == "" {
		return fmt.Errorf("SECRETS_PATH is required")
	}
	if !validStoreTypes[c.Storage.SessionStore] {
		return fmt.Errorf("SESSION_STORE must be one of: memory, badger")
	}
	if c.Storage.SessionStore == "badger" && c.Storage.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required when SESSION_STORE=badger")
	}
	return nil
}

// validateTracker validates the upstream tracker configuration.
// Client ID and username may be empty until the setup wizard has run.
func (c *Config) validateTracker() error {
	if err := validateHTTPURL(c.Tracker.BaseURL, "TRAKT_API_URL"); err != nil {
		return err
	}
	if containsPlaceholder(c.Tracker.ClientID) {
		return fmt.Errorf("TRAKT_CLIENT_ID contains a placeholder value, set your real client ID")
	}
	if c.Tracker.RateLimit <= 0 {
		return fmt.Errorf("TRAKT_RATE_LIMIT must be positive")
	}
	if c.Tracker.Burst < 1 {
		return fmt.Errorf("TRAKT_BURST must be at least 1")
	}
	if c.Tracker.Timeout <= 0 {
		return fmt.Errorf("TRAKT_TIMEOUT must be positive")
	}
	if c.Tracker.BreakerFailures < 1 {
		return fmt.Errorf("TRAKT_BREAKER_FAILURES must be at least 1")
	}
	return nil
}

// validateCache validates cache TTLs and backend
func (c *Config) validateCache() error {
	if !validStoreTypes[c.Cache.Store] {
		return fmt.Errorf("CACHE_STORE must be one of: memory, badger")
	}
	if c.Cache.Store == "badger" && c.Storage.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required when CACHE_STORE=badger")
	}
	if c.Cache.StatsTTL < time.Second || c.Cache.WatchedTTL < time.Second {
		return fmt.Errorf("CACHE_STATS_TTL and CACHE_WATCHED_TTL must be at least 1s")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_CLIENT_ID",
	"PLACEHOLDER",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
