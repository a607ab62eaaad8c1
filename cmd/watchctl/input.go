// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errEmptyPassword = errors.New("password must not be empty")

// promptPassword reads one password. With --password-stdin it reads a line
// from stdin; otherwise it prompts on stderr and reads without echo.
func (a *app) promptPassword(prompt string) (string, error) {
	var password string
	if a.passwordStdin {
		line, err := a.stdin.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	} else {
		fmt.Fprint(a.stderr, prompt)
		raw, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	}

	if password == "" {
		return "", errEmptyPassword
	}
	return password, nil
}
