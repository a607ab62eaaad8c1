// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/watchstats/internal/auth"
	"github.com/tomtom215/watchstats/internal/logging"
	"github.com/tomtom215/watchstats/internal/tracker"
	"github.com/tomtom215/watchstats/internal/validation"
)

// Cache keys and metric labels.
const (
	cacheTypeStats   = "stats"
	cacheTypeWatched = "watched"
	cacheKeyStats    = "stats"
	cacheKeyWatched  = "watched:"
	trackerService   = "tracker"
)

// Stats returns the owner's tracker statistics, served from cache when fresh.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	data, err := h.cache.Load(r.Context(), cacheTypeStats, cacheKeyStats, h.config.Cache.StatsTTL, h.tracker.Stats)
	if err != nil {
		h.writeTrackerError(w, r, err)
		return
	}
	WriteSuccess(w, r, json.RawMessage(data))
}

// Watched returns the watched list for the kind path parameter.
func (h *Handler) Watched(w http.ResponseWriter, r *http.Request) {
	req := validation.WatchedRequest{Kind: chi.URLParam(r, "kind")}
	if !validateRequest(NewResponseWriter(w, r), &req) {
		return
	}
	kind := tracker.Kind(req.Kind)

	data, err := h.cache.Load(r.Context(), cacheTypeWatched, cacheKeyWatched+req.Kind, h.config.Cache.WatchedTTL,
		func(ctx context.Context) ([]byte, error) {
			return h.tracker.Watched(ctx, kind)
		})
	if err != nil {
		h.writeTrackerError(w, r, err)
		return
	}
	WriteSuccess(w, r, json.RawMessage(data))
}

// Rebuild drops every cached statistic so the next read refetches from the
// tracker. It needs a session (when the gate is on) and the rebuild password.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	var req validation.RebuildRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ip := clientIP(r)
	sessionID := ""
	if session := auth.SessionFromContext(r.Context()); session != nil {
		sessionID = session.ID
	}

	if !h.checkLockout(w, r, ip) {
		return
	}
	if !h.secrets.VerifyRebuild(req.Password) {
		h.security.LogRebuild(sessionID, ip, false)
		if h.recordFailure(w, r, ip) {
			NewResponseWriter(w, r).Error(http.StatusForbidden, ErrCodeInvalidCredentials, "Invalid rebuild password")
		}
		return
	}
	h.clearLockout(r, ip)

	if err := h.cache.Purge(r.Context()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to purge stats cache")
		NewResponseWriter(w, r).InternalError("Failed to purge cache")
		return
	}

	h.security.LogRebuild(sessionID, ip, true)
	WriteSuccess(w, r, map[string]bool{"purged": true})
}

// writeTrackerError maps tracker and cache failures onto API errors.
func (h *Handler) writeTrackerError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)

	var statusErr *tracker.StatusError
	switch {
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		// Client went away; nothing useful can be written.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Client cancelled stats request")
	case errors.Is(err, tracker.ErrNoUsername):
		rw.ServiceUnavailable("Tracker username is not configured")
	case errors.Is(err, tracker.ErrUnavailable):
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Tracker circuit open")
		rw.ServiceUnavailable("Tracker is temporarily unavailable")
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
		rw.NotFound("Tracker profile not found or private")
	case errors.Is(err, context.DeadlineExceeded):
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Tracker request timed out")
		rw.Error(http.StatusGatewayTimeout, ErrCodeExternalServiceFail, "Tracker did not respond in time")
	default:
		rw.ExternalServiceError(trackerService, err)
	}
}
