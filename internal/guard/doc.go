// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

// Package guard gates a client's calls to the Watchstats API behind a single
// authentication check.
//
// A Guard probes the status endpoint (GET /api/auth/status) to learn whether
// the current session is valid. Concurrent callers share one in-flight probe:
// however many requests are issued while a probe is pending, the status
// endpoint is hit once and every caller sees the same answer.
//
// # State Machine
//
//	Unknown ──probe──▶ Checking ──┬──▶ Authenticated
//	                      ▲       └──▶ Unauthenticated
//	                      │                 │
//	                      └──401 / force ───┘
//
// # Guarded Calls
//
// Guard implements the same Do method as *http.Client. Paths on the allow-list
// (health, setup, auth endpoints) pass straight through. Any other request
// first requires an Authenticated state; if the pre-flight probe says no, Do
// returns ErrAuthRequired without sending anything. A 401 from a guarded call
// returns ErrAuthExpired and starts a fresh probe in the background.
//
// Two distinct recovery flows exist: HTTP 412 from the status endpoint
// means first-run setup is incomplete and is handed to the Navigator, while
// needsAuth=true is an in-place login prompt handled through the View.
//
// # Usage
//
//	g, err := guard.New(guard.Config{
//	    BaseURL:   "http://localhost:3857",
//	    View:      view,
//	    Navigator: nav,
//	})
//	if err != nil {
//	    return err
//	}
//	resp, err := g.Get(ctx, "/api/stats")
//	if errors.Is(err, guard.ErrUnauthenticated) {
//	    // prompt for login
//	}
package guard
