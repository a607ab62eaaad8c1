// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package guard

// State is the Guard's best-known authentication state.
type State int

const (
	// StateUnknown is the initial state before any probe has run.
	StateUnknown State = iota
	// StateChecking means a probe is in flight.
	StateChecking
	// StateAuthenticated means the last probe found a valid session.
	StateAuthenticated
	// StateUnauthenticated means the last probe failed, asked for login,
	// or a guarded call came back 401.
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}

// outcome classifies a completed probe.
type outcome int

const (
	outcomeFailed outcome = iota // transport error, unexpected status or body
	outcomeSetupRequired
	outcomeNeedsAuth
	outcomeAuthenticated
)

func (o outcome) state() State {
	if o == outcomeAuthenticated {
		return StateAuthenticated
	}
	return StateUnauthenticated
}

func (o outcome) String() string {
	switch o {
	case outcomeSetupRequired:
		return "setup_required"
	case outcomeNeedsAuth:
		return "needs_auth"
	case outcomeAuthenticated:
		return "authenticated"
	default:
		return "failed"
	}
}
