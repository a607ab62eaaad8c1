// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/watchstats/internal/logging"
	"github.com/tomtom215/watchstats/internal/metrics"
)

// ErrLockoutNotFound is returned when a lockout entry doesn't exist.
var ErrLockoutNotFound = errors.New("lockout entry not found")

// ErrClientLocked is returned when a login is blocked due to lockout.
var ErrClientLocked = errors.New("client temporarily locked due to too many failed attempts")

// lockoutRetention is how long an unlocked entry is kept after its last
// failure, so repeat offenders keep their backoff.
const lockoutRetention = 24 * time.Hour

// LockoutConfig holds configuration for the login lockout system.
type LockoutConfig struct {
	// MaxAttempts is the number of failed attempts before lockout.
	MaxAttempts int

	// LockoutDuration is the base lockout period.
	LockoutDuration time.Duration

	// EnableExponentialBackoff doubles the lockout period on each subsequent lockout.
	EnableExponentialBackoff bool

	// MaxLockoutDuration caps the lockout period when using exponential backoff.
	MaxLockoutDuration time.Duration

	// Enabled controls whether lockout is active.
	Enabled bool
}

// DefaultLockoutConfig returns sensible defaults.
func DefaultLockoutConfig() *LockoutConfig {
	return &LockoutConfig{
		MaxAttempts:              5,
		LockoutDuration:          15 * time.Minute,
		EnableExponentialBackoff: true,
		MaxLockoutDuration:       24 * time.Hour,
		Enabled:                  true,
	}
}

// LockoutEntry tracks failed login attempts for one client.
type LockoutEntry struct {
	Subject        string
	FailedAttempts int
	LastAttempt    time.Time
	LockoutCount   int // times locked so far, drives the backoff
	LockedUntil    time.Time
}

// IsLocked returns true if the entry is currently locked out.
func (e *LockoutEntry) IsLocked() bool {
	return time.Now().Before(e.LockedUntil)
}

// LockoutStore defines the interface for lockout state persistence.
type LockoutStore interface {
	GetEntry(ctx context.Context, subject string) (*LockoutEntry, error)
	SaveEntry(ctx context.Context, entry *LockoutEntry) error
	DeleteEntry(ctx context.Context, subject string) error
	CleanupExpired(ctx context.Context) (int, error)
}

// LockoutManager handles login lockout. Subjects are client IPs.
type LockoutManager struct {
	config LockoutConfig
	store  LockoutStore

	// mu serialises read-modify-write cycles on entries.
	mu sync.Mutex
}

// NewLockoutManager creates a new lockout manager.
func NewLockoutManager(store LockoutStore, config *LockoutConfig) *LockoutManager {
	if config == nil {
		config = DefaultLockoutConfig()
	}
	if store == nil {
		store = NewMemoryLockoutStore()
	}
	return &LockoutManager{
		config: *config,
		store:  store,
	}
}

// CheckLocked reports whether subject is locked and for how much longer.
func (m *LockoutManager) CheckLocked(ctx context.Context, subject string) (bool, time.Duration, error) {
	if !m.config.Enabled {
		return false, 0, nil
	}

	entry, err := m.store.GetEntry(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrLockoutNotFound) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("check lockout: %w", err)
	}

	if !entry.IsLocked() {
		return false, 0, nil
	}
	return true, time.Until(entry.LockedUntil), nil
}

// RecordFailedAttempt records a failed login and reports whether subject is
// now locked.
func (m *LockoutManager) RecordFailedAttempt(ctx context.Context, subject string) (locked bool, remaining time.Duration, err error) {
	if !m.config.Enabled {
		return false, 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, err := m.store.GetEntry(ctx, subject)
	if err != nil && !errors.Is(err, ErrLockoutNotFound) {
		return false, 0, fmt.Errorf("get entry: %w", err)
	}
	if entry == nil {
		entry = &LockoutEntry{Subject: subject}
	}

	if entry.IsLocked() {
		return true, time.Until(entry.LockedUntil), nil
	}

	now := time.Now()
	entry.FailedAttempts++
	entry.LastAttempt = now

	if entry.FailedAttempts < m.config.MaxAttempts {
		if err := m.store.SaveEntry(ctx, entry); err != nil {
			return false, 0, fmt.Errorf("save entry: %w", err)
		}
		return false, 0, nil
	}

	lockoutDuration := calculateLockoutDuration(&m.config, entry.LockoutCount)
	entry.LockedUntil = now.Add(lockoutDuration)
	entry.LockoutCount++
	entry.FailedAttempts = 0

	if err := m.store.SaveEntry(ctx, entry); err != nil {
		return false, 0, fmt.Errorf("save locked entry: %w", err)
	}

	metrics.LockoutsTotal.Inc()
	logging.Warn().
		Str("subject", entry.Subject).
		Dur("duration", lockoutDuration).
		Int("lockout_count", entry.LockoutCount).
		Msg("Client locked out")

	return true, lockoutDuration, nil
}

// calculateLockoutDuration computes the lockout duration with optional exponential backoff.
func calculateLockoutDuration(config *LockoutConfig, lockoutCount int) time.Duration {
	duration := config.LockoutDuration

	if !config.EnableExponentialBackoff || lockoutCount == 0 {
		return duration
	}

	for i := 0; i < lockoutCount; i++ {
		duration *= 2
		if config.MaxLockoutDuration > 0 && duration >= config.MaxLockoutDuration {
			return config.MaxLockoutDuration
		}
	}
	return duration
}

// RecordSuccessfulLogin clears the lockout state for subject.
func (m *LockoutManager) RecordSuccessfulLogin(ctx context.Context, subject string) error {
	if !m.config.Enabled {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.DeleteEntry(ctx, subject); err != nil && !errors.Is(err, ErrLockoutNotFound) {
		return fmt.Errorf("clear lockout: %w", err)
	}
	return nil
}

// CleanupExpired drops entries that are unlocked and idle.
func (m *LockoutManager) CleanupExpired(ctx context.Context) (int, error) {
	return m.store.CleanupExpired(ctx)
}

// Config returns the current configuration.
func (m *LockoutManager) Config() LockoutConfig {
	return m.config
}

// MemoryLockoutStore implements LockoutStore using in-memory storage.
type MemoryLockoutStore struct {
	entries map[string]LockoutEntry
	mu      sync.RWMutex
}

// NewMemoryLockoutStore creates a new in-memory lockout store.
func NewMemoryLockoutStore() *MemoryLockoutStore {
	return &MemoryLockoutStore{
		entries: make(map[string]LockoutEntry),
	}
}

// GetEntry retrieves a lockout entry.
func (s *MemoryLockoutStore) GetEntry(_ context.Context, subject string) (*LockoutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[subject]
	if !ok {
		return nil, ErrLockoutNotFound
	}
	return &entry, nil
}

// SaveEntry persists a lockout entry.
func (s *MemoryLockoutStore) SaveEntry(_ context.Context, entry *LockoutEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Subject] = *entry
	return nil
}

// DeleteEntry removes a lockout entry.
func (s *MemoryLockoutStore) DeleteEntry(_ context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[subject]; !ok {
		return ErrLockoutNotFound
	}
	delete(s.entries, subject)
	return nil
}

// CleanupExpired removes entries that are unlocked and whose last failure is
// older than the retention window.
func (s *MemoryLockoutStore) CleanupExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	threshold := time.Now().Add(-lockoutRetention)
	count := 0
	for subject, entry := range s.entries {
		if !entry.IsLocked() && entry.LastAttempt.Before(threshold) {
			delete(s.entries, subject)
			count++
		}
	}
	return count, nil
}
