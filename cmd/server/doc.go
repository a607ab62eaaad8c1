// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

/*
Package main is the entry point for the Watchstats server.

Watchstats serves a personal dashboard of media tracking statistics fetched
from an upstream tracker, behind an optional single-password login.

# Application Architecture

	Root supervisor ("watchstats")
	├── maintenance-layer
	│   └── janitor (expired sessions, idle lockouts, value log GC)
	└── api-layer
	    └── http-server (chi router)

Startup order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog with the configured level and format
 3. Storage: BadgerDB under DATA_DIR when a badger backend is selected
 4. Secrets: setup state and credential records from SECRETS_PATH
 5. Tracker client: rate limited, behind a circuit breaker
 6. HTTP router and supervisor tree

# Signal Handling

SIGINT and SIGTERM cancel the tree. The HTTP server drains in-flight
requests for up to SHUTDOWN_TIMEOUT, then BadgerDB is closed.

# Example Usage

	export DATA_DIR=/var/lib/watchstats
	export SECRETS_PATH=/var/lib/watchstats/secrets.yaml
	export TRAKT_CLIENT_ID=your-client-id
	./watchstats

Open the dashboard and complete the setup wizard to choose the tracker
username and passwords.
*/
package main
