// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/watchstats/internal/api"
	"github.com/tomtom215/watchstats/internal/guard"
	"github.com/tomtom215/watchstats/internal/logging"
)

const (
	defaultServer  = "http://localhost:3857"
	defaultTimeout = 30 * time.Second
	serverEnvVar   = "WATCHSTATS_SERVER"
	maxResponse    = 8 << 20
)

// app is the state shared by every command of one invocation.
type app struct {
	serverURL     string
	sessionFile   string
	timeout       time.Duration
	logLevel      string
	passwordStdin bool

	stdin  *bufio.Reader
	stdout io.Writer
	stderr io.Writer

	jar      *fileJar
	guard    *guard.Guard
	terminal *terminal
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  bufio.NewReader(stdin),
		stdout: stdout,
		stderr: stderr,
	}
}

// defaultSessionFile is ~/.config/watchstats/session.json or the platform
// equivalent.
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".watchstats-session.json"
	}
	return filepath.Join(dir, "watchstats", "session.json")
}

// connect builds the cookie jar and the guard. Commands that never talk to
// the server skip it.
func (a *app) connect() error {
	if a.guard != nil {
		return nil
	}

	level, err := zerolog.ParseLevel(a.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q", a.logLevel)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, NoColor: true}).Level(level).With().Timestamp().Logger()
	logging.SetLogger(logger)

	jar, err := openFileJar(a.sessionFile, a.serverURL)
	if err != nil {
		return err
	}

	a.terminal = newTerminal(a.stderr, a.serverURL)
	g, err := guard.New(guard.Config{
		BaseURL:   a.serverURL,
		Client:    &http.Client{Jar: jar, Timeout: a.timeout},
		View:      a.terminal.view,
		Navigator: a.terminal,
		Logger:    &logger,
	})
	if err != nil {
		return err
	}

	a.jar = jar
	a.guard = g
	return nil
}

// saveSession writes the jar back so the next invocation reuses the cookie.
func (a *app) saveSession() error {
	if a.jar == nil {
		return nil
	}
	return a.jar.Save()
}

// envelope is the server's response wrapper with the payload left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *api.APIError   `json:"error,omitempty"`
}

// serverError is an API error envelope returned as a Go error.
type serverError struct {
	status     int
	code       string
	message    string
	retryAfter string
}

func (e *serverError) Error() string {
	msg := fmt.Sprintf("%s (%s, HTTP %d)", e.message, e.code, e.status)
	if e.retryAfter != "" {
		msg += ", retry after " + e.retryAfter + "s"
	}
	return msg
}

// readEnvelope decodes resp and closes its body. A non-2xx status or an
// unsuccessful envelope becomes a *serverError.
func readEnvelope(resp *http.Response) (json.RawMessage, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &serverError{status: resp.StatusCode, code: "HTTP_ERROR", message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		se := &serverError{
			status:     resp.StatusCode,
			code:       "HTTP_ERROR",
			message:    http.StatusText(resp.StatusCode),
			retryAfter: resp.Header.Get("Retry-After"),
		}
		if env.Error != nil {
			se.code = env.Error.Code
			se.message = env.Error.Message
		}
		return nil, se
	}
	return env.Data, nil
}

// explain turns guard errors into a hint the user can act on.
func explain(err error) error {
	if errors.Is(err, guard.ErrUnauthenticated) {
		return fmt.Errorf("%w; run 'watchctl login'", err)
	}
	return err
}
