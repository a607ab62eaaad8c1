// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package services

import (
	"context"
	"fmt"

	"github.com/tomtom215/watchstats/internal/logging"
	"github.com/tomtom215/watchstats/internal/metrics"
)

// SessionSweeper is satisfied by both session stores.
type SessionSweeper interface {
	CleanupExpired(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

// Cleaner removes stale entries and reports how many it dropped.
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// Compactor reclaims disk space. *storage.DB satisfies it.
type Compactor interface {
	RunGC(ctx context.Context) (int, error)
}

// SessionCleanupTask deletes expired sessions and resyncs the live session
// gauge with the store.
func SessionCleanupTask(store SessionSweeper) Task {
	return Task{
		Name: "sessions",
		Run: func(ctx context.Context) error {
			removed, err := store.CleanupExpired(ctx)
			if err != nil {
				return fmt.Errorf("cleanup sessions: %w", err)
			}
			metrics.SessionsExpired.Add(float64(removed))

			live, err := store.Count(ctx)
			if err != nil {
				return fmt.Errorf("count sessions: %w", err)
			}
			metrics.ActiveSessions.Set(float64(live))

			if removed > 0 {
				logging.Ctx(ctx).Info().Int("removed", removed).Int("live", live).Msg("Expired sessions removed")
			}
			return nil
		},
	}
}

// LockoutCleanupTask drops idle lockout entries.
func LockoutCleanupTask(lockouts Cleaner) Task {
	return Task{
		Name: "lockouts",
		Run: func(ctx context.Context) error {
			removed, err := lockouts.CleanupExpired(ctx)
			if err != nil {
				return fmt.Errorf("cleanup lockouts: %w", err)
			}
			if removed > 0 {
				logging.Ctx(ctx).Debug().Int("removed", removed).Msg("Idle lockout entries removed")
			}
			return nil
		},
	}
}

// StorageGCTask runs value log garbage collection.
func StorageGCTask(db Compactor) Task {
	return Task{
		Name: "value-log-gc",
		Run: func(ctx context.Context) error {
			_, err := db.RunGC(ctx)
			return err
		},
	}
}
