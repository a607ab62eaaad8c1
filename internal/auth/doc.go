// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

/*
Package auth provides server-side session management and login lockout.

Key Components:

  - Session and SessionStore: opaque 32-byte hex session tokens with sliding
    expiry. MemorySessionStore keeps them in a map; BadgerSessionStore
    persists them in the shared BadgerDB under the "session:" prefix with a
    native TTL.
  - SessionMiddleware: reads the session cookie, attaches the Session to the
    request context (SessionFromContext) and guards routes with
    RequireSession. Also issues the one-shot flash cookie consumed by the
    status endpoint.
  - LockoutManager: per-client failed login tracking with exponential
    backoff between lockouts.

Usage Example:

	store := auth.NewBadgerSessionStore(db)
	sessions := auth.NewSessionMiddleware(store, &auth.SessionMiddlewareConfig{
	    CookieName:  cfg.Security.SessionCookieName,
	    SessionTTL:  cfg.Security.SessionTTL,
	    GateEnabled: secretsStore.LoginEnabled,
	})

	r.With(sessions.RequireSession).Get("/api/stats", h.Stats)

Password verification lives in package secrets; this package never sees a
credential.
*/
package auth
