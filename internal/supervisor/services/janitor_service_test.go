// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/watchstats/internal/auth"
	"github.com/tomtom215/watchstats/internal/metrics"
	"github.com/tomtom215/watchstats/internal/storage"
)

var _ suture.Service = (*JanitorService)(nil)

func countingTask(name string, runs *atomic.Int32, err error) Task {
	return Task{
		Name: name,
		Run: func(context.Context) error {
			runs.Add(1)
			return err
		},
	}
}

func TestNewJanitorService_DefaultInterval(t *testing.T) {
	t.Parallel()

	if got := NewJanitorService(0).interval; got != DefaultJanitorInterval {
		t.Errorf("interval = %v, want %v", got, DefaultJanitorInterval)
	}
	if got := NewJanitorService(time.Minute).interval; got != time.Minute {
		t.Errorf("interval = %v, want 1m", got)
	}
}

func TestJanitorService_RunsOnStartAndTick(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	svc := NewJanitorService(20*time.Millisecond, countingTask("count", &runs, nil))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("task ran %d times, want at least 3", runs.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
}

func TestJanitorService_FailingTaskDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	var failing, healthy atomic.Int32
	svc := NewJanitorService(time.Hour,
		countingTask("failing", &failing, errors.New("store offline")),
		countingTask("healthy", &healthy, nil),
	)

	svc.sweep(context.Background())

	if failing.Load() != 1 || healthy.Load() != 1 {
		t.Errorf("runs = (failing %d, healthy %d), want (1, 1)", failing.Load(), healthy.Load())
	}
}

func TestJanitorService_SweepStopsWhenCanceled(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	svc := NewJanitorService(time.Hour, countingTask("a", &runs, nil), countingTask("b", &runs, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.sweep(ctx)

	if runs.Load() != 0 {
		t.Errorf("tasks ran %d times after cancel, want 0", runs.Load())
	}
}

func TestSessionCleanupTask(t *testing.T) {
	store := auth.NewMemorySessionStore()
	ctx := context.Background()

	for _, ttl := range []time.Duration{time.Hour, -time.Minute, -time.Hour} {
		session, err := auth.NewSession("owner", ttl)
		if err != nil {
			t.Fatalf("NewSession() error = %v", err)
		}
		if err := store.Create(ctx, session); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	before := testutil.ToFloat64(metrics.SessionsExpired)
	if err := SessionCleanupTask(store).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := testutil.ToFloat64(metrics.SessionsExpired) - before; got != 2 {
		t.Errorf("SessionsExpired delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.ActiveSessions); got != 1 {
		t.Errorf("ActiveSessions = %v, want 1", got)
	}
	if store.Len() != 1 {
		t.Errorf("store.Len() = %d, want 1", store.Len())
	}
}

func TestLockoutCleanupTask(t *testing.T) {
	t.Parallel()

	cleaner := &fakeCleaner{err: errors.New("boom")}
	if err := LockoutCleanupTask(cleaner).Run(context.Background()); err == nil {
		t.Error("Run() error = nil, want the cleaner's error")
	}

	cleaner = &fakeCleaner{removed: 3}
	if err := LockoutCleanupTask(cleaner).Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if cleaner.calls != 1 {
		t.Errorf("cleaner called %d times, want 1", cleaner.calls)
	}
}

func TestStorageGCTask(t *testing.T) {
	t.Parallel()

	db, err := storage.Open(storage.Options{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	defer db.Close()

	if err := StorageGCTask(db).Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

type fakeCleaner struct {
	mu      sync.Mutex
	removed int
	err     error
	calls   int
}

func (f *fakeCleaner) CleanupExpired(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.removed, f.err
}
