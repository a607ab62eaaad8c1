// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package main

import (
	"context"

	"github.com/tomtom215/watchstats/internal/auth"
	"github.com/tomtom215/watchstats/internal/cache"
	"github.com/tomtom215/watchstats/internal/config"
	"github.com/tomtom215/watchstats/internal/logging"
	"github.com/tomtom215/watchstats/internal/storage"
)

// sessionBackend is what both the middleware and the janitor need.
type sessionBackend interface {
	auth.SessionStore
	Count(ctx context.Context) (int, error)
}

// stores holds the persistence backends chosen by configuration.
type stores struct {
	db       *storage.DB
	sessions sessionBackend
	cache    *cache.Loader
}

// openStores opens BadgerDB when any backend needs it and picks the session
// and cache stores.
func openStores(cfg *config.Config) (*stores, error) {
	st := &stores{}

	needBadger := cfg.Storage.SessionStore == "badger" || cfg.Cache.Store == "badger"
	if needBadger && cfg.Storage.BadgerPath() != "" {
		db, err := storage.Open(storage.Options{Path: cfg.Storage.BadgerPath()})
		if err != nil {
			return nil, err
		}
		st.db = db
	}

	if st.db != nil && cfg.Storage.SessionStore == "badger" {
		st.sessions = auth.NewBadgerSessionStore(st.db.Badger())
	} else {
		st.sessions = auth.NewMemorySessionStore()
		logging.Info().Msg("Sessions are kept in memory and will not survive a restart")
	}

	if st.db != nil && cfg.Cache.Store == "badger" {
		st.cache = cache.NewLoader(cache.NewBadgerStore(st.db.Badger()))
	} else {
		st.cache = cache.NewLoader(cache.NewMemoryStore())
	}

	return st, nil
}

// Close releases BadgerDB if it was opened.
func (s *stores) Close() {
	if s.db == nil {
		return
	}
	if err := s.db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing BadgerDB")
	}
}
