// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/watchstats/internal/logging"
	"github.com/tomtom215/watchstats/internal/metrics"
	"github.com/tomtom215/watchstats/internal/validation"
)

// sessionSubject is the subject of every dashboard session. There is a
// single owner; sessions carry no identity beyond it.
const sessionSubject = "owner"

// Flash messages shown by the client after a redirect.
const (
	flashLoggedOut = "You have been logged out."
)

// AuthStatus is the body of GET /api/auth/status. It is written without the
// response envelope.
type AuthStatus struct {
	NeedsAuth bool   `json:"needsAuth"`
	Flash     string `json:"flash"`
}

// LoginResponse is the data of a successful login.
type LoginResponse struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthStatus answers the client guard's probe: 412 before setup, otherwise
// whether this request would need to log in. Any pending flash message is
// consumed.
func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	if !requireSetup(w, r, h.secrets) {
		return
	}

	writeJSON(w, http.StatusOK, AuthStatus{
		NeedsAuth: h.sessions.NeedsAuth(r),
		Flash:     h.sessions.ConsumeFlash(w, r),
	})
}

// Login verifies the login password and issues a session cookie. A locked
// client is rejected before the password is looked at.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !requireSetup(w, r, h.secrets) {
		return
	}

	rw := NewResponseWriter(w, r)
	if !h.secrets.LoginEnabled() {
		rw.BadRequest("Login is not enabled")
		return
	}

	ip := clientIP(r)
	if !h.checkLockout(w, r, ip) {
		return
	}

	var req validation.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if !h.secrets.VerifyLogin(req.Password) {
		metrics.RecordLogin("failure")
		h.security.LogLoginFailure(ip, r.UserAgent(), "invalid password")
		if h.recordFailure(w, r, ip) {
			rw.Error(http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid password")
		}
		return
	}

	h.clearLockout(r, ip)

	session, err := h.sessions.CreateSession(w, r, sessionSubject)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to create session")
		rw.InternalError("Failed to create session")
		return
	}

	metrics.RecordLogin("success")
	h.security.LogLoginSuccess(session.ID, ip, r.UserAgent())
	rw.Success(LoginResponse{ExpiresAt: session.ExpiresAt})
}

// Logout deletes the caller's session and leaves a flash message for the
// next status probe. It succeeds without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.sessions.DestroySession(w, r)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to delete session")
	}
	if sessionID != "" {
		h.security.LogLogout(sessionID, clientIP(r))
	}

	h.sessions.SetFlash(w, flashLoggedOut)
	WriteSuccess(w, r, map[string]bool{"loggedOut": true})
}

// checkLockout writes 429 and returns false while ip is locked out.
// Lockout store errors are logged and the request proceeds.
func (h *Handler) checkLockout(w http.ResponseWriter, r *http.Request, ip string) bool {
	locked, remaining, err := h.lockout.CheckLocked(r.Context(), ip)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Lockout check failed")
		return true
	}
	if !locked {
		return true
	}

	metrics.RecordLogin("locked")
	h.security.LogLoginFailure(ip, r.UserAgent(), "client locked out")
	writeLocked(w, r, remaining)
	return false
}

// recordFailure counts a failed password for ip. When that failure locks the
// client it writes 429 and returns false; otherwise the caller answers.
func (h *Handler) recordFailure(w http.ResponseWriter, r *http.Request, ip string) bool {
	locked, remaining, err := h.lockout.RecordFailedAttempt(r.Context(), ip)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to record login failure")
		return true
	}
	if !locked {
		return true
	}
	writeLocked(w, r, remaining)
	return false
}

func (h *Handler) clearLockout(r *http.Request, ip string) {
	if err := h.lockout.RecordSuccessfulLogin(r.Context(), ip); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to clear lockout entry")
	}
}

func writeLocked(w http.ResponseWriter, r *http.Request, remaining time.Duration) {
	seconds := int(math.Ceil(remaining.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	NewResponseWriter(w, r).ErrorWithDetails(http.StatusTooManyRequests, ErrCodeAccountLocked,
		"Too many failed attempts, try again later",
		map[string]int{"retryAfterSeconds": seconds})
}
