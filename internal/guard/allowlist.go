// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package guard

import "strings"

// AllowList holds paths that bypass the guard. An entry ending in "/" matches
// every path below it; any other entry must match exactly.
type AllowList []string

// DefaultAllowList covers the endpoints used to establish authentication.
func DefaultAllowList() AllowList {
	return AllowList{
		"/api/health",
		"/api/setup",
		"/api/auth/",
	}
}

// Allows reports whether path may be called without authentication.
func (a AllowList) Allows(path string) bool {
	for _, entry := range a {
		if entry == "" {
			continue
		}
		if strings.HasSuffix(entry, "/") {
			if strings.HasPrefix(path, entry) || path == strings.TrimSuffix(entry, "/") {
				return true
			}
			continue
		}
		if path == entry {
			return true
		}
	}
	return false
}
