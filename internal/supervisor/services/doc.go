// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

/*
Package services provides suture.Service wrappers for the server's
long-lived components.

# Available Services

HTTP Server (HTTPServerService):
  - Runs *http.Server.ListenAndServe in a goroutine
  - On cancellation calls Shutdown with a fresh deadline to drain requests
  - A listen failure is returned so the supervisor restarts the server

Janitor (JanitorService):
  - Runs a list of Tasks once at start and then on a fixed interval
  - Task errors are logged, never returned
  - Built-in tasks: SessionCleanupTask, LockoutCleanupTask, StorageGCTask

# Usage

	janitor := services.NewJanitorService(cfg.Security.SessionCleanupInterval,
	    services.SessionCleanupTask(sessionStore),
	    services.LockoutCleanupTask(lockouts),
	    services.StorageGCTask(db),
	)
	tree.AddMaintenanceService(janitor)
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

# Return Values

Serve returns ctx.Err() on a requested shutdown. Any other error marks the
service as failed and suture restarts it, backing off once the failure
threshold is crossed.
*/
package services
