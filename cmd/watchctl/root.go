// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	server := os.Getenv(serverEnvVar)
	if server == "" {
		server = defaultServer
	}

	root := &cobra.Command{
		Use:   "watchctl",
		Short: "Command line client for a Watchstats server",
		Long: `watchctl talks to a Watchstats server through the same auth guard the
dashboard uses. The session cookie is kept in --session-file between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	root.SetIn(os.Stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.serverURL, "server", server, "server base URL (env "+serverEnvVar+")")
	flags.StringVar(&a.sessionFile, "session-file", defaultSessionFile(), "where the session cookie is kept; empty disables persistence")
	flags.DurationVar(&a.timeout, "timeout", defaultTimeout, "HTTP timeout per request")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level for client diagnostics")
	flags.BoolVar(&a.passwordStdin, "password-stdin", false, "read passwords from stdin instead of the terminal")

	root.AddCommand(
		statusCmd(a),
		loginCmd(a),
		logoutCmd(a),
		statsCmd(a),
		rebuildCmd(a),
		hashCmd(a),
	)
	return root
}
