// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

/*
Package supervisor runs the server's long-lived services under a suture v4
supervisor tree.

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
	tree.AddMaintenanceService(services.NewJanitorService(interval, tasks...))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	err := tree.Serve(ctx)

Supervisor events (service failures, backoff, restarts) go through
sutureslog into the zerolog stream.

The service wrappers live in the services subpackage.
*/
package supervisor
