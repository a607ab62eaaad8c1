// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/watchstats/internal/logging"
	"github.com/tomtom215/watchstats/internal/metrics"
)

type contextKey string

const sessionContextKey contextKey = "session"

// ContextWithSession returns a copy of ctx carrying session.
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext returns the session attached by Authenticate, or nil.
func SessionFromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(sessionContextKey).(*Session)
	return session
}

// SessionMiddlewareConfig holds configuration for the session middleware.
type SessionMiddlewareConfig struct {
	// CookieName is the name of the session cookie.
	CookieName string

	// FlashCookieName is the name of the one-shot flash message cookie.
	FlashCookieName string

	// SessionTTL is the session time-to-live.
	SessionTTL time.Duration

	// SlidingSession enables session expiry extension on each request.
	SlidingSession bool

	// CookiePath is the path for the session cookie.
	CookiePath string

	// CookieSecure sets the Secure flag on the cookie.
	CookieSecure bool

	// CookieSameSite sets the SameSite attribute.
	CookieSameSite http.SameSite

	// GateEnabled reports whether RequireSession enforces a session.
	// nil means always enforce.
	GateEnabled func() bool

	// Unauthorized writes the 401 response. Default: plain text 401.
	Unauthorized http.HandlerFunc
}

// DefaultSessionMiddlewareConfig returns sensible defaults.
func DefaultSessionMiddlewareConfig() *SessionMiddlewareConfig {
	return &SessionMiddlewareConfig{
		CookieName:      "watchstats_session",
		FlashCookieName: "watchstats_flash",
		SessionTTL:      24 * time.Hour,
		SlidingSession:  true,
		CookiePath:      "/",
		CookieSecure:    true,
		CookieSameSite:  http.SameSiteLaxMode,
	}
}

// SessionMiddleware provides session-based authentication middleware.
type SessionMiddleware struct {
	store  SessionStore
	config *SessionMiddlewareConfig
}

// NewSessionMiddleware creates a new session middleware.
func NewSessionMiddleware(store SessionStore, config *SessionMiddlewareConfig) *SessionMiddleware {
	if config == nil {
		config = DefaultSessionMiddlewareConfig()
	}
	if config.CookieName == "" {
		config.CookieName = "watchstats_session"
	}
	if config.FlashCookieName == "" {
		config.FlashCookieName = "watchstats_flash"
	}
	if config.CookiePath == "" {
		config.CookiePath = "/"
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 24 * time.Hour
	}
	if config.Unauthorized == nil {
		config.Unauthorized = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
		}
	}
	return &SessionMiddleware{
		store:  store,
		config: config,
	}
}

// Store returns the backing session store.
func (m *SessionMiddleware) Store() SessionStore {
	return m.store
}

// Authenticate extracts and validates the session from the request cookie.
// A valid session is attached to the request context; otherwise the request
// continues without one (use RequireSession for protected routes).
func (m *SessionMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := m.SessionID(r)
		if sessionID == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.store.Get(r.Context(), sessionID)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
				logging.Ctx(r.Context()).Error().Err(err).Msg("Session lookup error")
			}
			next.ServeHTTP(w, r)
			return
		}

		if m.config.SlidingSession {
			newExpiry := time.Now().Add(m.config.SessionTTL)
			if touchErr := m.store.Touch(r.Context(), sessionID, newExpiry); touchErr != nil {
				logging.Ctx(r.Context()).Error().Err(touchErr).Msg("Failed to touch session")
			} else {
				session.ExpiresAt = newExpiry
			}
		}

		next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
	})
}

// RequireSession answers 401 unless the request carries a valid session or
// the login gate is disabled.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.gateEnabled() && SessionFromContext(r.Context()) == nil {
			m.config.Unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// NeedsAuth reports whether r would be rejected by RequireSession.
func (m *SessionMiddleware) NeedsAuth(r *http.Request) bool {
	if !m.gateEnabled() {
		return false
	}
	sessionID := m.SessionID(r)
	if sessionID == "" {
		return true
	}
	_, err := m.store.Get(r.Context(), sessionID)
	return err != nil
}

func (m *SessionMiddleware) gateEnabled() bool {
	return m.config.GateEnabled == nil || m.config.GateEnabled()
}

// SessionID returns the session ID carried by r, or "".
func (m *SessionMiddleware) SessionID(r *http.Request) string {
	cookie, err := r.Cookie(m.config.CookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// SetSessionCookie sets the session cookie on the response.
func (m *SessionMiddleware) SetSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    sessionID,
		Path:     m.config.CookiePath,
		MaxAge:   int(m.config.SessionTTL.Seconds()),
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: m.config.CookieSameSite,
	})
}

// ClearSessionCookie clears the session cookie.
func (m *SessionMiddleware) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     m.config.CookiePath,
		MaxAge:   -1,
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: m.config.CookieSameSite,
	})
}

// CreateSession creates a session for subject and sets the cookie. Any
// session already carried by r is deleted first so a login always rotates
// the session ID.
func (m *SessionMiddleware) CreateSession(w http.ResponseWriter, r *http.Request, subject string) (*Session, error) {
	ctx := r.Context()
	if oldID := m.SessionID(r); oldID != "" {
		if err := m.store.Delete(ctx, oldID); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to delete previous session")
		}
	}

	session, err := NewSession(subject, m.config.SessionTTL)
	if err != nil {
		return nil, err
	}
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}
	metrics.ActiveSessions.Inc()

	m.SetSessionCookie(w, session.ID)
	return session, nil
}

// DestroySession deletes the session carried by r, if any, and clears the
// cookie. It returns the deleted session ID.
func (m *SessionMiddleware) DestroySession(w http.ResponseWriter, r *http.Request) (string, error) {
	sessionID := m.SessionID(r)
	m.ClearSessionCookie(w)
	if sessionID == "" {
		return "", nil
	}
	if err := m.store.Delete(r.Context(), sessionID); err != nil {
		return sessionID, err
	}
	metrics.ActiveSessions.Dec()
	return sessionID, nil
}

// CookieName returns the configured session cookie name.
func (m *SessionMiddleware) CookieName() string {
	return m.config.CookieName
}
