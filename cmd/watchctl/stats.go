// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package main

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/watchstats/internal/tracker"
	"github.com/tomtom215/watchstats/internal/validation"
)

func statsCmd(a *app) *cobra.Command {
	var watched string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print tracker statistics as JSON",
		Example: `  watchctl stats
  watchctl stats --watched movies`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := "/api/stats"
			if watched != "" {
				if !tracker.Kind(watched).Valid() {
					return fmt.Errorf("--watched must be %q or %q", tracker.KindMovies, tracker.KindShows)
				}
				path = "/api/stats/watched/" + watched
			}

			if err := a.connect(); err != nil {
				return err
			}
			resp, err := a.guard.Get(cmd.Context(), path)
			if err != nil {
				_ = a.saveSession()
				return explain(err)
			}
			data, err := readEnvelope(resp)
			if err != nil {
				return err
			}
			if err := a.saveSession(); err != nil {
				return err
			}
			return printJSON(a, data)
		},
	}
	cmd.Flags().StringVar(&watched, "watched", "", "list watched items instead: movies or shows")
	return cmd
}

func rebuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Purge the server's statistics cache",
		Long:  "Purge the server's statistics cache. Requires the rebuild password chosen during setup.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			// Check the session before asking for a password it would not reach.
			if !a.guard.IsAuthenticated() && !a.guard.CheckStatus(cmd.Context()) {
				_ = a.saveSession()
				return explain(fmt.Errorf("rebuild: %w", errNotAuthenticated))
			}

			password, err := a.promptPassword("Rebuild password: ")
			if err != nil {
				return err
			}
			resp, err := a.guard.PostJSON(cmd.Context(), "/api/rebuild", validation.RebuildRequest{Password: password})
			if err != nil {
				return explain(err)
			}
			if _, err := readEnvelope(resp); err != nil {
				return err
			}
			if err := a.saveSession(); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "Cache purged. Statistics will be refetched on the next request.")
			return nil
		},
	}
}

func printJSON(a *app, data []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	out.WriteByte('\n')
	_, err := a.stdout.Write(out.Bytes())
	return err
}
