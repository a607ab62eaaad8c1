// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/watchstats/internal/logging"
	"github.com/tomtom215/watchstats/internal/metrics"
)

const (
	// APIVersion is sent as trakt-api-version.
	APIVersion = "2"

	// breakerName labels the breaker in logs and metrics.
	breakerName = "tracker-api"

	// maxBodySize bounds a single upstream response.
	maxBodySize = 8 << 20

	// maxErrorBodySize bounds how much of an error response is kept.
	maxErrorBodySize = 1 << 10
)

// Kind selects a watched list.
type Kind string

const (
	KindMovies Kind = "movies"
	KindShows  Kind = "shows"
)

// Valid reports whether k is a known list.
func (k Kind) Valid() bool {
	return k == KindMovies || k == KindShows
}

var (
	// ErrNoUsername is returned when no tracker username is configured yet.
	ErrNoUsername = errors.New("tracker username not configured")

	// ErrInvalidKind is returned for a watched list other than movies or shows.
	ErrInvalidKind = errors.New("invalid watched kind")

	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("tracker temporarily unavailable")

	// ErrInvalidResponse is returned when the upstream body is not JSON.
	ErrInvalidResponse = errors.New("tracker returned invalid JSON")
)

// StatusError is an unexpected upstream HTTP status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tracker returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("tracker returned HTTP %d: %s", e.StatusCode, e.Body)
}

// clientError reports whether err is a 4xx answer. Those mean the request or
// profile is wrong, not that the upstream is down.
func clientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests
}

// Config configures a Client.
type Config struct {
	// BaseURL is the API origin. Required.
	BaseURL string

	// ClientID is sent as trakt-api-key. Required.
	ClientID string

	// Username returns whose statistics to fetch. It is consulted on every
	// call so a username saved by the setup wizard takes effect immediately.
	Username func() string

	// RateLimit is the sustained request rate per second. Default: 2
	RateLimit float64

	// Burst is the limiter bucket size. Default: 4
	Burst int

	// Timeout bounds each HTTP attempt. Default: 15s
	Timeout time.Duration

	// BreakerFailures is the consecutive failure count that opens the breaker. Default: 5
	BreakerFailures uint32

	// BreakerTimeout is how long the breaker stays open. Default: 1m
	BreakerTimeout time.Duration

	// MaxRetries bounds retries on HTTP 429. Default: 3
	MaxRetries int

	// RetryBaseDelay is the first 429 backoff, doubled per retry. Default: 1s
	RetryBaseDelay time.Duration

	// HTTPClient overrides the transport. Its Timeout is replaced by Timeout.
	HTTPClient *http.Client
}

// Client fetches statistics from the tracker. Safe for concurrent use.
type Client struct {
	baseURL        *url.URL
	clientID       string
	username       func() string
	http           *http.Client
	limiter        *rate.Limiter
	cb             *gobreaker.CircuitBreaker[[]byte]
	maxRetries     int
	retryBaseDelay time.Duration
	logger         zerolog.Logger
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("tracker: base URL is required")
	}
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("tracker: invalid base URL %q", cfg.BaseURL)
	}
	if cfg.ClientID == "" {
		return nil, errors.New("tracker: client ID is required")
	}
	if cfg.Username == nil {
		cfg.Username = func() string { return "" }
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = time.Minute
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = time.Second
	}

	httpClient := &http.Client{}
	if cfg.HTTPClient != nil {
		clone := *cfg.HTTPClient
		httpClient = &clone
	}
	httpClient.Timeout = cfg.Timeout

	c := &Client{
		baseURL:        base,
		clientID:       cfg.ClientID,
		username:       cfg.Username,
		http:           httpClient,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		logger:         logging.WithComponent("tracker"),
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	failures := cfg.BreakerFailures
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || clientError(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), int(to))
		},
	})

	return c, nil
}

// Stats returns the user's statistics object.
func (c *Client) Stats(ctx context.Context) ([]byte, error) {
	username, err := c.user()
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, "stats", "/users/"+url.PathEscape(username)+"/stats")
}

// Watched returns the user's watched movies or shows.
func (c *Client) Watched(ctx context.Context, kind Kind) ([]byte, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	username, err := c.user()
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, "watched", "/users/"+url.PathEscape(username)+"/watched/"+string(kind))
}

// BreakerState returns the breaker state for health reporting.
func (c *Client) BreakerState() gobreaker.State {
	return c.cb.State()
}

func (c *Client) user() (string, error) {
	username := strings.TrimSpace(c.username())
	if username == "" {
		return "", ErrNoUsername
	}
	return username, nil
}

// fetch runs one logical request through the breaker and records metrics.
// endpoint is a low-cardinality metric label.
func (c *Client) fetch(ctx context.Context, endpoint, path string) ([]byte, error) {
	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.get(ctx, path)
	})
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordTrackerRequest(endpoint, "rejected", 0)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	case err != nil:
		metrics.RecordTrackerRequest(endpoint, "failure", elapsed)
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Dur("duration", elapsed).Msg("Tracker request failed")
		return nil, err
	}

	metrics.RecordTrackerRequest(endpoint, "success", elapsed)
	c.logger.Debug().Str("endpoint", endpoint).Dur("duration", elapsed).Int("bytes", len(body)).Msg("Tracker request completed")
	return body, nil
}

// get performs the request with pacing and 429 backoff, returning a JSON body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	target := c.baseURL.JoinPath(path).String()

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("trakt-api-version", APIVersion)
		req.Header.Set("trakt-api-key", c.clientID)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxRetries {
			delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
			if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
			_ = resp.Body.Close()

			c.logger.Debug().Int("attempt", attempt+1).Dur("delay", delay).Msg("Tracker rate limited, backing off")
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		return readBody(resp)
	}
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidResponse, maxBodySize)
	}
	if !json.Valid(body) {
		return nil, ErrInvalidResponse
	}
	return body, nil
}
