// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package guard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/watchstats/internal/logging"
)

const (
	// DefaultStatusPath is the endpoint probed for authentication state.
	DefaultStatusPath = "/api/auth/status"

	// DefaultSetupPath is where the Navigator is sent when setup is incomplete.
	DefaultSetupPath = "/setup"

	// maxStatusBody bounds how much of a status response is decoded.
	maxStatusBody = 64 << 10
)

// HTTPClient is the transport a Guard sends requests through.
// *http.Client and *Guard both satisfy it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusResponse is the body of the status endpoint.
type StatusResponse struct {
	NeedsAuth bool   `json:"needsAuth"`
	Flash     string `json:"flash,omitempty"`
}

// Config configures a Guard.
type Config struct {
	// BaseURL is the API origin, e.g. "http://localhost:3857". Required.
	BaseURL string

	// Client sends requests. Default: http.DefaultClient
	Client HTTPClient

	// StatusPath is probed to learn authentication state.
	// Default: /api/auth/status
	StatusPath string

	// SetupPath is handed to the Navigator when the server answers 412.
	// Default: /setup
	SetupPath string

	// AllowList holds paths that skip the pre-flight check.
	// Default: DefaultAllowList(). The status path is always allowed.
	AllowList AllowList

	// View receives visibility side effects. Default: discard.
	View View

	// Navigator handles the setup redirect. Default: log only.
	Navigator Navigator

	// Logger overrides the component logger.
	Logger *zerolog.Logger
}

// Guard coordinates authentication for one client. It is safe for
// concurrent use; create one per client and share it.
type Guard struct {
	base       *url.URL
	client     HTTPClient
	statusPath string
	setupPath  string
	allow      AllowList
	view       View
	nav        Navigator
	logger     zerolog.Logger

	// mu guards state, pending and seq. Never held across I/O or callbacks.
	mu      sync.Mutex
	state   State
	pending *probe
	seq     uint64

	// viewMu orders side effects so an older probe never overwrites a newer one.
	viewMu  sync.Mutex
	applied uint64
}

// probe is one in-flight status check. ok is written before done is closed.
type probe struct {
	seq  uint64
	done chan struct{}
	ok   bool
}

// New creates a Guard in StateUnknown.
func New(cfg Config) (*Guard, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: parse base URL: %w", ErrInvalidConfig, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: base URL must be http or https, got %q", ErrInvalidConfig, cfg.BaseURL)
	}

	g := &Guard{
		base:       base,
		client:     cfg.Client,
		statusPath: cfg.StatusPath,
		setupPath:  cfg.SetupPath,
		allow:      cfg.AllowList,
		view:       cfg.View,
		nav:        cfg.Navigator,
		state:      StateUnknown,
	}
	if g.client == nil {
		g.client = http.DefaultClient
	}
	if g.statusPath == "" {
		g.statusPath = DefaultStatusPath
	}
	if g.setupPath == "" {
		g.setupPath = DefaultSetupPath
	}
	if g.allow == nil {
		g.allow = DefaultAllowList()
	}
	if g.view == nil {
		g.view = nopView{}
	}
	if cfg.Logger != nil {
		g.logger = *cfg.Logger
	} else {
		g.logger = logging.WithComponent("guard")
	}
	if g.nav == nil {
		logger := g.logger
		g.nav = NavigatorFunc(func(path string) {
			logger.Warn().Str("path", path).Msg("Setup required but no navigator configured")
		})
	}
	return g, nil
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// IsAuthenticated reports the last known result. It does not probe and may
// be stale between probes.
func (g *Guard) IsAuthenticated() bool {
	return g.State() == StateAuthenticated
}

// CheckStatus returns the result of the pending probe, starting one if none
// is in flight. It never returns an error: every failure reads as false.
//
// The probe runs to completion regardless of ctx. If ctx ends first the
// caller stops waiting and gets false; the probe still updates the Guard.
func (g *Guard) CheckStatus(ctx context.Context) bool {
	return g.wait(ctx, g.begin(ctx, false))
}

// ForceCheck discards any cached state or pending probe and probes again.
// Callers already waiting on the discarded probe still receive its result.
func (g *Guard) ForceCheck(ctx context.Context) bool {
	return g.wait(ctx, g.begin(ctx, true))
}

// Do sends req through the guard.
//
// Allow-listed paths go straight to the transport. Any other request needs
// an authenticated state; when the pre-flight probe fails Do returns
// ErrAuthRequired and the request is never sent. A 401 response is drained
// and closed, a fresh probe is started and Do returns ErrAuthExpired.
func (g *Guard) Do(req *http.Request) (*http.Response, error) {
	if g.allowed(req.URL.Path) {
		return g.client.Do(req)
	}

	if !g.IsAuthenticated() && !g.CheckStatus(req.Context()) {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		if err := req.Context().Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ErrAuthRequired)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxStatusBody))
		_ = resp.Body.Close()

		g.logger.Info().Str("path", req.URL.Path).Msg("Guarded call returned 401, re-checking session")
		g.expire(req.Context())
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ErrAuthExpired)
	}

	return resp, nil
}

// Get issues a guarded GET for path, resolved against the base URL.
func (g *Guard) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := g.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return g.Do(req)
}

// PostJSON issues a guarded POST of body encoded as JSON.
func (g *Guard) PostJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}
	req, err := g.NewRequest(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return g.Do(req)
}

// NewRequest builds a request for path relative to the base URL.
func (g *Guard) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	target := g.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (g *Guard) allowed(path string) bool {
	return path == g.statusPath || g.allow.Allows(path)
}

// begin returns the pending probe, registering a new one when none is in
// flight or force is set. Registration happens under mu before any I/O so
// concurrent callers can never start a second probe.
func (g *Guard) begin(ctx context.Context, force bool) *probe {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending != nil && !force {
		return g.pending
	}

	g.seq++
	p := &probe{seq: g.seq, done: make(chan struct{})}
	g.pending = p
	g.state = StateChecking

	go g.run(context.WithoutCancel(ctx), p)
	return p
}

// expire records a 401 and starts a re-probe that later callers coalesce onto.
func (g *Guard) expire(ctx context.Context) {
	g.mu.Lock()
	if g.pending == nil {
		g.state = StateUnauthenticated
	}
	g.mu.Unlock()

	g.begin(ctx, false)
}

func (g *Guard) wait(ctx context.Context, p *probe) bool {
	select {
	case <-p.done:
		return p.ok
	case <-ctx.Done():
		return false
	}
}

func (g *Guard) run(ctx context.Context, p *probe) {
	result, flash := g.fetchStatus(ctx)

	g.mu.Lock()
	current := g.pending == p
	if current {
		g.pending = nil
		g.state = result.state()
	}
	g.mu.Unlock()

	if current {
		g.apply(p.seq, result, flash)
	} else {
		g.logger.Debug().Uint64("probe", p.seq).Msg("Discarding superseded probe result")
	}

	p.ok = result == outcomeAuthenticated
	close(p.done)
}

// fetchStatus performs one status request and classifies it.
func (g *Guard) fetchStatus(ctx context.Context) (outcome, string) {
	req, err := g.NewRequest(ctx, http.MethodGet, g.statusPath, nil)
	if err != nil {
		g.logger.Warn().Err(err).Msg("Status probe failed")
		return outcomeFailed, ""
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn().Err(err).Str("path", g.statusPath).Msg("Status probe failed")
		return outcomeFailed, ""
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxStatusBody))
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusPreconditionFailed:
		return outcomeSetupRequired, ""
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		g.logger.Warn().Int("status", resp.StatusCode).Str("path", g.statusPath).Msg("Status probe returned unexpected status")
		return outcomeFailed, ""
	}

	var status StatusResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxStatusBody)).Decode(&status); err != nil {
		g.logger.Warn().Err(err).Str("path", g.statusPath).Msg("Status probe returned an invalid body")
		return outcomeFailed, ""
	}

	if status.NeedsAuth {
		return outcomeNeedsAuth, status.Flash
	}
	return outcomeAuthenticated, status.Flash
}

// apply runs the UI side effects for a probe result unless a newer probe
// has already applied its own.
func (g *Guard) apply(seq uint64, result outcome, flash string) {
	g.viewMu.Lock()
	defer g.viewMu.Unlock()

	if seq < g.applied {
		return
	}
	g.applied = seq

	g.logger.Debug().Uint64("probe", seq).Str("outcome", result.String()).Msg("Status probe completed")

	switch result {
	case outcomeSetupRequired:
		g.nav.Navigate(g.setupPath)
		return
	case outcomeAuthenticated:
		g.view.Hide(ElementLoginPrompt)
		g.view.Show(ElementContent)
		g.view.Show(ElementFilters)
	case outcomeNeedsAuth:
		g.view.Show(ElementLoginPrompt)
		g.view.Hide(ElementContent)
		g.view.Hide(ElementFilters)
	case outcomeFailed:
		return
	}

	if flash != "" {
		g.view.Flash(flash)
	}
}
