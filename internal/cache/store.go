// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a byte-oriented cache with per-entry TTL.
type Store interface {
	// Get returns the value for key. A missing or expired key reports false
	// with a nil error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Purge removes every entry.
	Purge(ctx context.Context) error
}

// entry represents a cached item with expiration
type entry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore provides a thread-safe in-memory Store. Expired entries are
// dropped when read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry)}
}

// Get retrieves a value from the cache by key with automatic expiration checking.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	if !time.Now().Before(e.expiresAt) {
		s.mu.Lock()
		// Re-check: a concurrent Set may have replaced it.
		if cur, ok := s.entries[key]; ok && !time.Now().Before(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	return e.data, true, nil
}

// Set stores a copy of value for ttl.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{data: data, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Purge removes all entries from the cache in a single atomic operation.
func (s *MemoryStore) Purge(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
