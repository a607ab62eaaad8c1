// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package guard

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is wrapped by both guard errors.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrAuthRequired is returned when the pre-flight probe fails. No request was sent.
	ErrAuthRequired = fmt.Errorf("%w: authentication required", ErrUnauthenticated)

	// ErrAuthExpired is returned when a guarded call came back 401.
	ErrAuthExpired = fmt.Errorf("%w: authentication expired", ErrUnauthenticated)

	// ErrInvalidConfig is returned by New for an unusable Config.
	ErrInvalidConfig = errors.New("invalid guard config")
)
