// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

/*
Command watchctl is a terminal client for a Watchstats server.

Every call goes through one guard.Guard, so the CLI follows the same rules
as the dashboard: guarded endpoints are only called once the status probe
reports a valid session, and a 401 triggers a fresh probe.

	watchctl status                  # authenticated | unauthenticated
	watchctl login                   # prompts for the dashboard password
	watchctl stats                   # statistics as JSON
	watchctl stats --watched shows   # watched shows
	watchctl rebuild                 # purge the server cache
	watchctl logout
	watchctl hash                    # print a credential record

The session cookie is stored in --session-file (default
$XDG_CONFIG_HOME/watchstats/session.json, mode 0600) and bound to the
--server it came from.
*/
package main
