// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"relative setup path", func(c *Config) { c.Server.SetupPath = "setup" }, "SETUP_PATH"},
		{"short session", func(c *Config) { c.Security.SessionTTL = time.Second }, "SESSION_TTL"},
		{"no cookie name", func(c *Config) { c.Security.SessionCookieName = "" }, "SESSION_COOKIE_NAME"},
		{"wildcard cors in production", func(c *Config) { c.Server.Environment = "production" }, "CORS_ORIGINS"},
		{"explicit cors in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Security.CORSOrigins = []string{"https://stats.example.org"}
		}, ""},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"zero rate limit disabled", func(c *Config) {
			c.Security.RateLimitReqs = 0
			c.Security.RateLimitDisabled = true
		}, ""},
		{"login window too long", func(c *Config) { c.Security.LoginRateLimitWindow = 2 * time.Hour }, "LOGIN_RATE_LIMIT_WINDOW"},
		{"lockout zero attempts", func(c *Config) { c.Security.Lockout.MaxAttempts = 0 }, "LOCKOUT_MAX_ATTEMPTS"},
		{"lockout max below base", func(c *Config) { c.Security.Lockout.MaxDuration = time.Minute }, "LOCKOUT_MAX_DURATION"},
		{"lockout disabled ignores knobs", func(c *Config) {
			c.Security.Lockout.Enabled = false
			c.Security.Lockout.MaxAttempts = 0
		}, ""},
		{"no secrets path", func(c *Config) { c.Storage.SecretsPath = "" }, "SECRETS_PATH"},
		{"bad session store", func(c *Config) { c.Storage.SessionStore = "redis" }, "SESSION_STORE"},
		{"badger without data dir", func(c *Config) { c.Storage.DataDir = "" }, "DATA_DIR"},
		{"memory without data dir", func(c *Config) {
			c.Storage.DataDir = ""
			c.Storage.SessionStore = "memory"
			c.Cache.Store = "memory"
		}, ""},
		{"tracker url with path", func(c *Config) { c.Tracker.BaseURL = "https://api.trakt.tv/v2" }, "TRAKT_API_URL"},
		{"tracker placeholder", func(c *Config) { c.Tracker.ClientID = "YOUR_CLIENT_ID" }, "TRAKT_CLIENT_ID"},
		{"tracker zero rate", func(c *Config) { c.Tracker.RateLimit = 0 }, "TRAKT_RATE_LIMIT"},
		{"cache ttl zero", func(c *Config) { c.Cache.StatsTTL = 0 }, "CACHE_STATS_TTL"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %s", err, tt.wantErr)
			}
		})
	}
}

func TestPasswordPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		policy   PasswordPolicy
		password string
		valid    bool
	}{
		{"long enough", DefaultPasswordPolicy(), "blue-harbour-lamp", true},
		{"too short", DefaultPasswordPolicy(), "abc12", false},
		{"common", DefaultPasswordPolicy(), "Password123", false},
		{"repeats", DefaultPasswordPolicy(), "aaaaab-harbour", false},
		{"rebuild needs 12", RebuildPasswordPolicy(), "harbour-lam", false},
		{"rebuild ok", RebuildPasswordPolicy(), "harbour-lamp-7", true},
		{"multibyte counted as runes", DefaultPasswordPolicy(), "ééééçàüö", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.policy.ValidateWithError(tt.password)
			if tt.valid && err != nil {
				t.Errorf("ValidateWithError(%q) = %v, want nil", tt.password, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("ValidateWithError(%q) = nil, want error", tt.password)
			}
		})
	}
}

func TestMaxConsecutiveRepeats(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		"":       0,
		"a":      1,
		"abc":    1,
		"aabbb":  3,
		"xyyyyz": 4,
	}
	for in, want := range tests {
		if got := maxConsecutiveRepeats(in); got != want {
			t.Errorf("maxConsecutiveRepeats(%q) = %d, want %d", in, got, want)
		}
	}
}
