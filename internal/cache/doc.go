// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

/*
Package cache provides the TTL cache in front of the upstream tracker.

# Overview

Tracker statistics change slowly and the upstream API is rate limited, so
responses are cached as raw JSON bytes:

  - Store: the storage contract (Get, Set with a per-entry TTL, Purge)
  - MemoryStore: thread-safe map with lazy expiration, used in tests and
    when no data directory is configured
  - BadgerStore: entries in the shared BadgerDB under the "cache:" prefix,
    expired by badger's native TTL, so the cache survives restarts
  - Loader: read-through wrapper that collapses concurrent misses on one key
    into a single upstream fetch (golang.org/x/sync/singleflight) and
    records cache_hits_total / cache_misses_total

# Usage

	loader := cache.NewLoader(cache.NewBadgerStore(db))
	body, err := loader.Load(ctx, "stats", "stats", time.Hour, tracker.Stats)

A rebuild calls loader.Purge. Fetches that were already in flight when the
purge happened still return to their callers but are not written back.
*/
package cache
