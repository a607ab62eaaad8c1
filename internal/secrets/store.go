// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/watchstats/internal/credential"
	"github.com/tomtom215/watchstats/internal/logging"
)

// fileMode is the permission of the secrets file.
const fileMode fs.FileMode = 0o600

// ErrSetupNotCompleted is returned by operations that need a completed setup.
var ErrSetupNotCompleted = errors.New("setup not completed")

// Hasher creates and checks credential records.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, record string) bool
}

// Secrets is the on-disk document.
type Secrets struct {
	SetupCompleted      bool   `koanf:"setup_completed"`
	LoginEnabled        bool   `koanf:"login_enabled"`
	LoginPassword       string `koanf:"login_password"`
	LoginPasswordHash   string `koanf:"login_password_hash"`
	RebuildPassword     string `koanf:"rebuild_password"`
	RebuildPasswordHash string `koanf:"rebuild_password_hash"`
	TrackerUsername     string `koanf:"tracker_username"`
}

// SetupInput is what the setup wizard submits. Passwords are plaintext.
type SetupInput struct {
	TrackerUsername string
	LoginEnabled    bool
	LoginPassword   string
	RebuildPassword string
}

// Store guards the secrets file. Safe for concurrent use.
type Store struct {
	path   string
	hasher Hasher
	logger zerolog.Logger

	mu      sync.RWMutex
	secrets Secrets
}

// Open loads the secrets file at path. A missing file yields an empty store
// with setup not completed; it is created on the first Complete.
func Open(path string, hasher Hasher) (*Store, error) {
	if hasher == nil {
		hasher = credential.Default()
	}
	s := &Store{
		path:   path,
		hasher: hasher,
		logger: logging.WithComponent("secrets"),
	}

	loaded, err := load(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info().Str("path", path).Msg("No secrets file found, setup required")
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	changed, err := s.migrate(&loaded)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := write(path, loaded); err != nil {
			return nil, err
		}
		s.logger.Info().Str("path", path).Msg("Hashed plaintext credentials in secrets file")
	}

	s.secrets = loaded
	return s, nil
}

func load(path string) (Secrets, error) {
	var out Secrets
	if _, err := os.Stat(path); err != nil {
		return out, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return out, fmt.Errorf("load secrets file %s: %w", path, err)
	}
	if err := k.Unmarshal("", &out); err != nil {
		return out, fmt.Errorf("decode secrets file %s: %w", path, err)
	}
	return out, nil
}

// migrate hashes plaintext inputs and non-record hash fields in place.
func (s *Store) migrate(sec *Secrets) (bool, error) {
	pairs := []struct {
		name  string
		input *string
		hash  *string
	}{
		{"login_password", &sec.LoginPassword, &sec.LoginPasswordHash},
		{"rebuild_password", &sec.RebuildPassword, &sec.RebuildPasswordHash},
	}

	changed := false
	for _, p := range pairs {
		if *p.input != "" {
			record := *p.input
			if !credential.IsHashed(record) {
				hashed, err := s.hasher.Hash(record)
				if err != nil {
					return false, fmt.Errorf("hash %s: %w", p.name, err)
				}
				record = hashed
			}
			*p.hash = record
			*p.input = ""
			changed = true
		}

		if credential.NeedsRehash(*p.hash) {
			hashed, err := s.hasher.Hash(*p.hash)
			if err != nil {
				return false, fmt.Errorf("hash %s_hash: %w", p.name, err)
			}
			*p.hash = hashed
			changed = true
			s.logger.Warn().Str("field", p.name+"_hash").Msg("Field held a plaintext value and was hashed")
		}
	}
	return changed, nil
}

// write replaces the file at path atomically: temp file in the same
// directory, fsync, rename.
func write(path string, sec Secrets) error {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(sec, "koanf"), nil); err != nil {
		return fmt.Errorf("encode secrets: %w", err)
	}
	data, err := k.Marshal(yaml.Parser())
	if err != nil {
		return fmt.Errorf("encode secrets: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create secrets dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".secrets-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp secrets file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp secrets file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp secrets file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp secrets file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp secrets file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace secrets file: %w", err)
	}
	return nil
}

// Path returns the secrets file location.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a copy of the current document.
func (s *Store) Snapshot() Secrets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secrets
}

// SetupCompleted reports whether the setup wizard has been completed.
func (s *Store) SetupCompleted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secrets.SetupCompleted
}

// LoginEnabled reports whether the dashboard requires a login.
func (s *Store) LoginEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secrets.SetupCompleted && s.secrets.LoginEnabled
}

// TrackerUsername returns the configured tracker profile.
func (s *Store) TrackerUsername() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secrets.TrackerUsername
}

// VerifyLogin checks password against the login record. False when no record is set.
func (s *Store) VerifyLogin(password string) bool {
	s.mu.RLock()
	record := s.secrets.LoginPasswordHash
	s.mu.RUnlock()
	return record != "" && s.hasher.Verify(password, record)
}

// VerifyRebuild checks password against the rebuild record. False when no record is set.
func (s *Store) VerifyRebuild(password string) bool {
	s.mu.RLock()
	record := s.secrets.RebuildPasswordHash
	s.mu.RUnlock()
	return record != "" && s.hasher.Verify(password, record)
}

// Complete hashes the submitted passwords, persists them and marks setup
// completed. A disabled login gate clears the login record.
func (s *Store) Complete(ctx context.Context, in SetupInput) error {
	next := Secrets{
		SetupCompleted:  true,
		LoginEnabled:    in.LoginEnabled,
		TrackerUsername: in.TrackerUsername,
	}

	var err error
	if next.RebuildPasswordHash, err = s.hasher.Hash(in.RebuildPassword); err != nil {
		return fmt.Errorf("hash rebuild password: %w", err)
	}
	if in.LoginEnabled {
		if next.LoginPasswordHash, err = s.hasher.Hash(in.LoginPassword); err != nil {
			return fmt.Errorf("hash login password: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := write(s.path, next); err != nil {
		return err
	}
	s.secrets = next

	s.logger.Info().
		Bool("login_enabled", next.LoginEnabled).
		Str("tracker_username", next.TrackerUsername).
		Msg("Setup completed")
	return nil
}
