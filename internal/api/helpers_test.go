// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/watchstats/internal/auth"
	"github.com/tomtom215/watchstats/internal/cache"
	"github.com/tomtom215/watchstats/internal/config"
	"github.com/tomtom215/watchstats/internal/credential"
	"github.com/tomtom215/watchstats/internal/secrets"
	"github.com/tomtom215/watchstats/internal/tracker"
)

const (
	testLoginPassword   = "correct horse battery"
	testRebuildPassword = "rebuild-staple-2026"
	testStatsBody       = `{"movies":{"plays":3,"watched":2}}`
)

// fakeTracker is a StatsSource with call counting.
type fakeTracker struct {
	mu           sync.Mutex
	statsCalls   int
	watchedCalls map[tracker.Kind]int
	err          error
}

func (f *fakeTracker) Stats(_ context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(testStatsBody), nil
}

func (f *fakeTracker) Watched(_ context.Context, kind tracker.Kind) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watchedCalls == nil {
		f.watchedCalls = map[tracker.Kind]int{}
	}
	f.watchedCalls[kind]++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`[{"kind":"` + string(kind) + `"}]`), nil
}

func (f *fakeTracker) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeTracker) calls() (stats int, watched map[tracker.Kind]int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := make(map[tracker.Kind]int, len(f.watchedCalls))
	for k, v := range f.watchedCalls {
		copied[k] = v
	}
	return f.statsCalls, copied
}

type testServer struct {
	handler  http.Handler
	secrets  *secrets.Store
	sessions *auth.MemorySessionStore
	tracker  *fakeTracker
}

type serverOptions struct {
	loginEnabled  bool
	skipSetup     bool
	maxAttempts   int
	loginRateReqs int
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()

	params := credential.DefaultParams()
	params.N = 16
	hasher, err := credential.NewHasher(params)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	store, err := secrets.Open(filepath.Join(t.TempDir(), "secrets.yaml"), hasher)
	if err != nil {
		t.Fatalf("secrets.Open: %v", err)
	}
	if !opts.skipSetup {
		err := store.Complete(context.Background(), secrets.SetupInput{
			TrackerUsername: "someone",
			LoginEnabled:    opts.loginEnabled,
			LoginPassword:   testLoginPassword,
			RebuildPassword: testRebuildPassword,
		})
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
	}

	sessionStore := auth.NewMemorySessionStore()
	sessions := auth.NewSessionMiddleware(sessionStore, &auth.SessionMiddlewareConfig{
		SessionTTL:     time.Hour,
		SlidingSession: true,
		CookieSecure:   false,
		CookieSameSite: http.SameSiteLaxMode,
		GateEnabled:    store.LoginEnabled,
		Unauthorized:   Unauthorized,
	})

	maxAttempts := opts.maxAttempts
	if maxAttempts == 0 {
		maxAttempts = 5
	}
	lockout := auth.NewLockoutManager(nil, &auth.LockoutConfig{
		Enabled:            true,
		MaxAttempts:        maxAttempts,
		LockoutDuration:    time.Minute,
		MaxLockoutDuration: time.Hour,
	})

	fake := &fakeTracker{}
	handler, err := NewHandler(Deps{
		Config: &config.Config{
			Cache: config.CacheConfig{StatsTTL: time.Hour, WatchedTTL: time.Hour},
		},
		Secrets:  store,
		Sessions: sessions,
		Lockout:  lockout,
		Cache:    cache.NewLoader(cache.NewMemoryStore()),
		Tracker:  fake,
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	mwConfig := DefaultChiMiddlewareConfig()
	mwConfig.RateLimitDisabled = opts.loginRateReqs == 0
	mwConfig.RateLimitRequests = 1000
	mwConfig.LoginRateLimit = RateLimitConfig{Requests: opts.loginRateReqs, Window: time.Minute}

	return &testServer{
		handler:  NewRouter(handler, NewChiMiddleware(mwConfig)).SetupChi(),
		secrets:  store,
		sessions: sessionStore,
		tracker:  fake,
	}
}

// do sends one request through the router.
func (s *testServer) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// doRaw sends body verbatim as JSON.
func (s *testServer) doRaw(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, body interface{}) io.ReadCloser {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encode body: %v", err)
	}
	return io.NopCloser(bytes.NewReader(data))
}

// login performs a successful login and returns the session cookie.
func (s *testServer) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"password": testLoginPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	c := findCookie(rec, "watchstats_session")
	if c == nil {
		t.Fatal("login: no session cookie set")
	}
	return c
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// envelope is APIResponse with Data left undecoded.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("Expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Error("Expected success=false")
	}
	if env.Error == nil {
		t.Fatal("Expected error object")
	}
	if env.Error.Code != code {
		t.Errorf("Expected error code %s, got %s", code, env.Error.Code)
	}
}
