// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewSession(t *testing.T) {
	t.Parallel()

	session, err := NewSession("owner", time.Hour)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if len(session.ID) != 2*sessionIDBytes {
		t.Errorf("ID length = %d, want %d", len(session.ID), 2*sessionIDBytes)
	}
	if session.Subject != "owner" {
		t.Errorf("Subject = %q, want owner", session.Subject)
	}
	if got := session.ExpiresAt.Sub(session.CreatedAt); got != time.Hour {
		t.Errorf("ExpiresAt - CreatedAt = %v, want 1h", got)
	}
	if session.IsExpired() {
		t.Error("new session should not be expired")
	}

	other, err := NewSession("owner", time.Hour)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if other.ID == session.ID {
		t.Error("two sessions share an ID")
	}
}

// sessionStoreContract runs the behaviour every SessionStore must share.
func sessionStoreContract(t *testing.T, store SessionStore) {
	t.Helper()
	ctx := context.Background()

	session, err := NewSession("owner", time.Hour)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Subject != "owner" || got.ID != session.ID {
		t.Errorf("Get() = %+v, want subject owner and id %s", got, session.ID)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrSessionNotFound", err)
	}

	newExpiry := time.Now().Add(2 * time.Hour)
	if err := store.Touch(ctx, session.ID, newExpiry); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	got, err = store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() after Touch error = %v", err)
	}
	if !got.ExpiresAt.Equal(newExpiry) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, newExpiry)
	}
	if got.LastAccessedAt.Before(session.LastAccessedAt) {
		t.Error("LastAccessedAt moved backwards")
	}

	if err := store.Touch(ctx, "missing", newExpiry); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Touch(missing) error = %v, want ErrSessionNotFound", err)
	}

	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrSessionNotFound", err)
	}
	if err := store.Delete(ctx, session.ID); err != nil {
		t.Errorf("Delete() twice error = %v", err)
	}
}

func TestMemorySessionStore(t *testing.T) {
	t.Parallel()
	sessionStoreContract(t, NewMemorySessionStore())
}

func TestMemorySessionStore_ExpiredSession(t *testing.T) {
	t.Parallel()

	store := NewMemorySessionStore()
	ctx := context.Background()

	expired := &Session{
		ID:        "expired",
		Subject:   "owner",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	live := &Session{
		ID:        "live",
		Subject:   "owner",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	for _, s := range []*Session{expired, live} {
		if err := store.Create(ctx, s); err != nil {
			t.Fatalf("Create(%s) error = %v", s.ID, err)
		}
	}

	if _, err := store.Get(ctx, "expired"); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Get(expired) error = %v, want ErrSessionExpired", err)
	}

	count, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", count)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
	if _, err := store.Get(ctx, "live"); err != nil {
		t.Errorf("Get(live) error = %v", err)
	}
}

func TestMemorySessionStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	store := NewMemorySessionStore()
	ctx := context.Background()

	session, err := NewSession("owner", time.Hour)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	session.Subject = "mutated"

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got.Subject = "mutated again"

	again, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again.Subject != "owner" {
		t.Errorf("stored Subject = %q, want owner", again.Subject)
	}
}

func TestMemorySessionStore_CountSkipsExpired(t *testing.T) {
	t.Parallel()

	store := NewMemorySessionStore()
	ctx := context.Background()

	for _, ttl := range []time.Duration{time.Hour, time.Hour, -time.Minute} {
		session, err := NewSession("owner", ttl)
		if err != nil {
			t.Fatalf("NewSession() error = %v", err)
		}
		if err := store.Create(ctx, session); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
	if store.Len() != 3 {
		t.Errorf("Len() = %d, want 3", store.Len())
	}
}
