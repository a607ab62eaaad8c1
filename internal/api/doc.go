// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

/*
Package api provides the HTTP surface of the Watchstats server.

Routes:

	GET  /api/health                 liveness, {"status":"ok"}
	GET  /api/setup                  setup wizard state
	POST /api/setup                  store credentials (current rebuild password once completed)
	GET  /api/auth/status            412 before setup, else {"needsAuth","flash"}
	POST /api/auth/login             password login, issues the session cookie
	POST /api/auth/logout            delete session, set flash
	GET  /api/stats                  cached tracker statistics (session)
	GET  /api/stats/watched/{kind}   cached watched list, movies or shows (session)
	POST /api/rebuild                purge the stats cache (session + rebuild password)
	GET  /metrics                    Prometheus exposition

Responses use the APIResponse envelope except /api/health and
/api/auth/status, which return their bodies directly so probes stay simple.

Authentication:

Sessions are cookie based (see internal/auth). When the login gate is
disabled in the setup wizard, session routes are open. Failed password
checks on login, setup changes and rebuild share one per-IP lockout;
a locked client gets 429 with Retry-After before any password is verified.

Usage:

	handler, err := api.NewHandler(api.Deps{...})
	mw := api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security))
	srv := &http.Server{Handler: api.NewRouter(handler, mw).SetupChi()}
*/
package api
