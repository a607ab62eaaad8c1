// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNotAuthenticated = errors.New("not authenticated")

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the saved session is valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			ok := a.guard.CheckStatus(cmd.Context())
			fmt.Fprintln(a.stdout, a.guard.State())
			if err := a.saveSession(); err != nil {
				return err
			}

			switch {
			case ok:
				return nil
			case a.terminal.SetupRequired():
				return errors.New("setup required")
			default:
				return errNotAuthenticated
			}
		},
	}
}
