// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

/*
Package tracker is the HTTP client for the upstream media tracker (the Trakt
v2 API).

Client Features:
  - Stats and Watched return the upstream JSON untouched, ready for caching
  - trakt-api-version and trakt-api-key headers on every request
  - Client-side pacing with golang.org/x/time/rate
  - Retry with exponential backoff on HTTP 429, honouring Retry-After
  - Circuit breaker (sony/gobreaker/v2) that opens after consecutive server
    errors; 4xx answers never trip it
  - Breaker state and request outcomes exported to Prometheus

Example:

	client, err := tracker.New(tracker.Config{
	    BaseURL:  "https://api.trakt.tv",
	    ClientID: cfg.Tracker.ClientID,
	    Username: store.TrackerUsername,
	})
	body, err := client.Stats(ctx)
*/
package tracker
