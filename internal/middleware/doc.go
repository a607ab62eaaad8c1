// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: request and correlation IDs for log tracing
  - PrometheusMetrics: request count, latency and in-flight instrumentation
  - SecurityHeaders: baseline response headers for JSON endpoints

All middleware has the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders)

PrometheusMetrics labels requests with the chi route pattern (for example
/api/stats/watched/{kind}) rather than the raw path, so label cardinality
stays bounded. Requests that match no route are labelled "unmatched".
*/
package middleware
