// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

/*
Package config provides centralized configuration management for Watchstats.

Configuration is loaded with Koanf v2 in three layers, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file (config.yaml, or the path in CONFIG_PATH)
 3. Environment variables

Credentials are deliberately not part of Config. The login and rebuild
passwords live in the secrets file (see internal/secrets), whose path is
configured here through storage.secrets_path.

# Environment Variables

Server:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 3857)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT
  - SHUTDOWN_TIMEOUT: Graceful shutdown budget (default: 15s)
  - SETUP_PATH: Where clients are sent when setup is incomplete (default: /setup)
  - ENVIRONMENT: development or production (default: development)

Security:
  - SESSION_TTL: Session lifetime, sliding (default: 24h)
  - SESSION_COOKIE_NAME (default: watchstats_session)
  - SESSION_COOKIE_SECURE (default: false)
  - CORS_ORIGINS: Comma-separated origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - LOGIN_RATE_LIMIT_REQUESTS, LOGIN_RATE_LIMIT_WINDOW
  - LOCKOUT_ENABLED, LOCKOUT_MAX_ATTEMPTS, LOCKOUT_DURATION, LOCKOUT_MAX_DURATION

Storage:
  - DATA_DIR: BadgerDB directory for sessions and the stats cache (default: /data)
  - SECRETS_PATH: Secrets YAML file (default: /data/secrets.yaml)
  - SESSION_STORE: memory or badger (default: badger)

Tracker:
  - TRAKT_API_URL (default: https://api.trakt.tv)
  - TRAKT_CLIENT_ID: API key sent as trakt-api-key
  - TRAKT_USERNAME: Profile whose statistics are mirrored
  - TRAKT_RATE_LIMIT, TRAKT_BURST, TRAKT_TIMEOUT

Cache:
  - CACHE_STORE: memory or badger (default: badger)
  - CACHE_STATS_TTL (default: 1h), CACHE_WATCHED_TTL (default: 6h)

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	addr := cfg.Server.Addr()

Config is immutable after Load and safe for concurrent reads.
*/
package config
