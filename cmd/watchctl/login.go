// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package main

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/watchstats/internal/api"
	"github.com/tomtom215/watchstats/internal/validation"
)

func loginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in with the dashboard password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(); err != nil {
				return err
			}
			password, err := a.promptPassword("Password: ")
			if err != nil {
				return err
			}

			resp, err := a.guard.PostJSON(cmd.Context(), "/api/auth/login", validation.LoginRequest{Password: password})
			if err != nil {
				return err
			}
			data, err := readEnvelope(resp)
			if err != nil {
				return err
			}

			var login api.LoginResponse
			if err := json.Unmarshal(data, &login); err != nil {
				return fmt.Errorf("decode login response: %w", err)
			}

			if !a.guard.ForceCheck(cmd.Context()) {
				return fmt.Errorf("login accepted but the session was not recognised")
			}
			if err := a.saveSession(); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Logged in. Session expires %s.\n", login.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.connect(); err != nil {
				return err
			}

			resp, err := a.guard.PostJSON(cmd.Context(), "/api/auth/logout", nil)
			if err != nil {
				return err
			}
			if _, err := readEnvelope(resp); err != nil {
				return err
			}

			// The re-probe consumes and prints the logout flash.
			a.guard.ForceCheck(cmd.Context())
			return a.saveSession()
		},
	}
}
