// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package api

import (
	"net/http"

	"github.com/tomtom215/watchstats/internal/logging"
	"github.com/tomtom215/watchstats/internal/secrets"
	"github.com/tomtom215/watchstats/internal/validation"
)

// SetupState is the body of GET /api/setup.
type SetupState struct {
	Completed    bool `json:"completed"`
	LoginEnabled bool `json:"loginEnabled"`
}

// SetupStatus reports whether the setup wizard has been completed.
func (h *Handler) SetupStatus(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, SetupState{
		Completed:    h.secrets.SetupCompleted(),
		LoginEnabled: h.secrets.LoginEnabled(),
	})
}

// Setup stores the wizard submission. Once setup has completed the request
// must carry the current rebuild password, and failures count towards the
// caller's lockout.
func (h *Handler) Setup(w http.ResponseWriter, r *http.Request) {
	var req validation.SetupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ip := clientIP(r)
	if h.secrets.SetupCompleted() && !h.authorizeReconfigure(w, r, ip, req.CurrentPassword) {
		return
	}

	if !h.checkPasswordPolicies(w, r, &req) {
		return
	}

	err := h.secrets.Complete(r.Context(), secrets.SetupInput{
		TrackerUsername: req.TrackerUsername,
		LoginEnabled:    req.LoginEnabled,
		LoginPassword:   req.LoginPassword,
		RebuildPassword: req.RebuildPassword,
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to store setup")
		h.security.LogSetup(ip, false, "store failed")
		NewResponseWriter(w, r).InternalError("Failed to save setup")
		return
	}

	// Cached stats may belong to the previous tracker profile.
	if err := h.cache.Purge(r.Context()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to purge stats cache after setup")
	}

	h.security.LogSetup(ip, true, "")
	WriteSuccess(w, r, SetupState{
		Completed:    true,
		LoginEnabled: req.LoginEnabled,
	})
}

// authorizeReconfigure checks the current rebuild password, applying the
// login lockout to the caller.
func (h *Handler) authorizeReconfigure(w http.ResponseWriter, r *http.Request, ip, current string) bool {
	if !h.checkLockout(w, r, ip) {
		return false
	}

	rw := NewResponseWriter(w, r)
	if current == "" {
		rw.Error(http.StatusForbidden, ErrCodeForbidden, "Current password is required to change setup")
		return false
	}
	if !h.secrets.VerifyRebuild(current) {
		h.security.LogSetup(ip, false, "invalid current password")
		if h.recordFailure(w, r, ip) {
			rw.Error(http.StatusForbidden, ErrCodeInvalidCredentials, "Current password is incorrect")
		}
		return false
	}

	h.clearLockout(r, ip)
	return true
}

// checkPasswordPolicies applies the login and rebuild password policies.
func (h *Handler) checkPasswordPolicies(w http.ResponseWriter, r *http.Request, req *validation.SetupRequest) bool {
	problems := map[string][]string{}
	if req.LoginEnabled {
		if p := h.loginPolicy.Validate(req.LoginPassword); len(p) > 0 {
			problems["loginPassword"] = p
		}
	}
	if p := h.rebuildPolicy.Validate(req.RebuildPassword); len(p) > 0 {
		problems["rebuildPassword"] = p
	}
	if req.LoginEnabled && req.LoginPassword == req.RebuildPassword {
		problems["rebuildPassword"] = append(problems["rebuildPassword"], "rebuild password must differ from the login password")
	}

	if len(problems) == 0 {
		return true
	}
	NewResponseWriter(w, r).ErrorWithDetails(http.StatusBadRequest, ErrCodeWeakPassword,
		"Password does not meet requirements", problems)
	return false
}
