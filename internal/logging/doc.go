// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

// Package logging provides centralized zerolog-based structured logging for Watchstats.
//
// The package provides:
//   - JSON output format for production (machine-parseable)
//   - Console output format for development (human-readable)
//   - Context-aware logging with request and correlation ID propagation
//   - Component loggers for the server, the CLI client and the auth guard
//   - An slog adapter so suture's event hook writes through zerolog
//   - Sanitizers that keep session IDs and credentials out of log output
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("route", "/api/stats").Msg("Cache refreshed")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Tracker request failed")
//
// # Configuration
//
// Environment Variables (through internal/config):
//
//	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - Output format: json, console (default: json)
//	LOG_CALLER  - Include caller file:line: true, false (default: false)
//
// # Credentials
//
// Plaintext passwords and stored credential records must never be passed to a
// logger. Session identifiers go through SanitizeSessionID first.
package logging
