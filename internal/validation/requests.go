// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package validation

// SetupRequest is the body of POST /api/setup.
type SetupRequest struct {
	// CurrentPassword is the existing rebuild password. Required once setup
	// has completed; checked by the handler, not here.
	CurrentPassword string `json:"currentPassword" validate:"omitempty,max=256"`

	TrackerUsername string `json:"trackerUsername" validate:"required,min=1,max=64,tracker_slug"`

	LoginEnabled  bool   `json:"loginEnabled"`
	LoginPassword string `json:"loginPassword" validate:"required_if=LoginEnabled true,max=256"`

	RebuildPassword string `json:"rebuildPassword" validate:"required,max=256"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Password string `json:"password" validate:"required,max=256"`
}

// RebuildRequest is the body of POST /api/rebuild.
type RebuildRequest struct {
	Password string `json:"password" validate:"required,max=256"`
}

// WatchedRequest holds the path parameter of GET /api/stats/watched/{kind}.
type WatchedRequest struct {
	Kind string `json:"kind" validate:"required,oneof=movies shows"`
}
