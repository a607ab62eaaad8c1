// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:3857/metrics

# Available Metrics

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Authentication:
  - auth_login_attempts_total{outcome}
  - auth_lockouts_total
  - auth_active_sessions
  - auth_sessions_expired_total

Cache:
  - cache_hits_total{cache_type}
  - cache_misses_total{cache_type}
  - cache_purges_total

Tracker:
  - tracker_requests_total{endpoint,result}
  - tracker_request_duration_seconds{endpoint}
  - circuit_breaker_state{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

Endpoint labels use chi route patterns, never raw paths, to keep cardinality
bounded.
*/
package metrics
