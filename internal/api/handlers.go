// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/tomtom215/watchstats/internal/auth"
	"github.com/tomtom215/watchstats/internal/cache"
	"github.com/tomtom215/watchstats/internal/config"
	"github.com/tomtom215/watchstats/internal/logging"
	"github.com/tomtom215/watchstats/internal/secrets"
	"github.com/tomtom215/watchstats/internal/tracker"
)

// SecretStore is the credential configuration the handlers read and update.
// *secrets.Store satisfies it.
type SecretStore interface {
	SetupCompleted() bool
	LoginEnabled() bool
	VerifyLogin(password string) bool
	VerifyRebuild(password string) bool
	Complete(ctx context.Context, in secrets.SetupInput) error
}

// StatsSource fetches raw statistics from the upstream tracker.
// *tracker.Client satisfies it.
type StatsSource interface {
	Stats(ctx context.Context) ([]byte, error)
	Watched(ctx context.Context, kind tracker.Kind) ([]byte, error)
}

// Deps are the collaborators a Handler needs. All fields are required
// except Security, which defaults to the global security logger.
type Deps struct {
	Config   *config.Config
	Secrets  SecretStore
	Sessions *auth.SessionMiddleware
	Lockout  *auth.LockoutManager
	Cache    *cache.Loader
	Tracker  StatsSource
	Security *logging.SecurityLogger
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor
//   - handlers_health.go: liveness
//   - handlers_setup.go: setup wizard state and submission
//   - handlers_auth.go: status probe, login, logout
//   - handlers_stats.go: cached statistics and rebuild
type Handler struct {
	config   *config.Config
	secrets  SecretStore
	sessions *auth.SessionMiddleware
	lockout  *auth.LockoutManager
	cache    *cache.Loader
	tracker  StatsSource
	security *logging.SecurityLogger

	loginPolicy   config.PasswordPolicy
	rebuildPolicy config.PasswordPolicy
}

// NewHandler validates deps and builds a Handler.
func NewHandler(deps Deps) (*Handler, error) {
	switch {
	case deps.Config == nil:
		return nil, errors.New("api: config is required")
	case deps.Secrets == nil:
		return nil, errors.New("api: secrets store is required")
	case deps.Sessions == nil:
		return nil, errors.New("api: session middleware is required")
	case deps.Lockout == nil:
		return nil, errors.New("api: lockout manager is required")
	case deps.Cache == nil:
		return nil, errors.New("api: cache loader is required")
	case deps.Tracker == nil:
		return nil, errors.New("api: tracker is required")
	}

	security := deps.Security
	if security == nil {
		security = logging.NewSecurityLogger()
	}

	return &Handler{
		config:        deps.Config,
		secrets:       deps.Secrets,
		sessions:      deps.Sessions,
		lockout:       deps.Lockout,
		cache:         deps.Cache,
		tracker:       deps.Tracker,
		security:      security,
		loginPolicy:   config.DefaultPasswordPolicy(),
		rebuildPolicy: config.RebuildPasswordPolicy(),
	}, nil
}

// Unauthorized writes the 401 envelope for protected routes. It is handed
// to the session middleware.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Unauthorized("Authentication required")
}

// clientIP is the lockout subject. RealIP rewrites RemoteAddr to a bare IP
// when a proxy header is present; otherwise the port is stripped here.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func requireSetup(w http.ResponseWriter, r *http.Request, store SecretStore) bool {
	if store.SetupCompleted() {
		return true
	}
	NewResponseWriter(w, r).SetupRequired()
	return false
}
