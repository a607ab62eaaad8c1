// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/watchstats/internal/logging"
	"github.com/tomtom215/watchstats/internal/metrics"
)

// FetchFunc produces a fresh value on a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Loader is a read-through cache over a Store.
type Loader struct {
	store  Store
	group  singleflight.Group
	logger zerolog.Logger

	// generation is bumped by Purge; fetches started under an older
	// generation do not write back. mu makes the check-and-write atomic
	// with respect to Purge.
	mu         sync.RWMutex
	generation atomic.Uint64
}

// NewLoader wraps store.
func NewLoader(store Store) *Loader {
	return &Loader{
		store:  store,
		logger: logging.WithComponent("cache"),
	}
}

// Load returns the cached value for key, calling fetch on a miss and storing
// its result for ttl. cacheType labels the hit/miss metrics.
//
// Concurrent misses on the same key share one fetch. The shared fetch is
// detached from the caller's cancellation; a caller whose ctx ends stops
// waiting and gets ctx.Err().
func (l *Loader) Load(ctx context.Context, cacheType, key string, ttl time.Duration, fetch FetchFunc) ([]byte, error) {
	value, ok, err := l.store.Get(ctx, key)
	if err != nil {
		// Read errors count as misses.
		l.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	}
	if ok {
		metrics.RecordCacheLookup(cacheType, true)
		return value, nil
	}
	metrics.RecordCacheLookup(cacheType, false)

	fetchCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (any, error) {
		gen := l.generation.Load()

		data, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}

		l.mu.RLock()
		defer l.mu.RUnlock()
		if l.generation.Load() != gen {
			l.logger.Debug().Str("key", key).Msg("Cache purged during fetch, not storing result")
			return data, nil
		}
		if err := l.store.Set(fetchCtx, key, data, ttl); err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
		return data, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("load %s: %w", key, res.Err)
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Purge empties the store and prevents in-flight fetches from repopulating it.
func (l *Loader) Purge(ctx context.Context) error {
	l.mu.Lock()
	l.generation.Add(1)
	err := l.store.Purge(ctx)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	metrics.CachePurges.Inc()
	l.logger.Info().Msg("Cache purged")
	return nil
}
