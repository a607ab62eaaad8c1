// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/watchstats/internal/credential"
)

var errPasswordMismatch = errors.New("passwords do not match")

func hashCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hash",
		Short: "Print a credential record for a password",
		Long: `Print the scrypt record for a password, for writing the secrets file by
hand. The server never needs to be reachable.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			password, err := a.promptPassword("Password: ")
			if err != nil {
				return err
			}
			if !a.passwordStdin {
				confirm, err := a.promptPassword("Confirm password: ")
				if err != nil {
					return err
				}
				if confirm != password {
					return errPasswordMismatch
				}
			}

			record, err := credential.Hash(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, record)
			return nil
		},
	}
}
