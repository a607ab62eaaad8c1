// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

// Package secrets persists the setup state and credential records in a small
// YAML file that administrators may also edit by hand:
//
//	setup_completed: true
//	login_enabled: true
//	login_password: ""              # plaintext input, cleared after hashing
//	login_password_hash: "salt:hash"
//	rebuild_password: ""
//	rebuild_password_hash: "salt:hash"
//	tracker_username: "me"
//
// On Open, any plaintext written to an input field is hashed into its
// *_hash counterpart and the input is cleared; a value pasted into an input
// that already looks like a record is moved across unchanged. A *_hash field
// holding something that is not a record is hashed as well, so a plaintext
// never survives a restart. When anything changed the file is rewritten
// atomically with mode 0600.
package secrets
