// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package api

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/goccy/go-json"
)

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) AuthStatus {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var status AuthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return status
}

func TestLogin_SessionLifecycle(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{loginEnabled: true})

	if !decodeStatus(t, srv.do(t, http.MethodGet, "/api/auth/status", nil)).NeedsAuth {
		t.Fatal("Expected needsAuth before login")
	}

	cookie := srv.login(t)
	if !cookie.HttpOnly {
		t.Error("Session cookie must be HttpOnly")
	}
	if srv.sessions.Len() != 1 {
		t.Errorf("Expected 1 stored session, got %d", srv.sessions.Len())
	}

	if decodeStatus(t, srv.do(t, http.MethodGet, "/api/auth/status", nil, cookie)).NeedsAuth {
		t.Error("Expected needsAuth=false with a valid session")
	}
	if rec := srv.do(t, http.MethodGet, "/api/stats", nil, cookie); rec.Code != http.StatusOK {
		t.Errorf("Expected stats with session, got %d", rec.Code)
	}

	logout := srv.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	if logout.Code != http.StatusOK {
		t.Fatalf("Expected logout 200, got %d", logout.Code)
	}
	if srv.sessions.Len() != 0 {
		t.Errorf("Expected session deleted, %d remain", srv.sessions.Len())
	}
	flash := findCookie(logout, "watchstats_flash")
	if flash == nil {
		t.Fatal("Expected flash cookie after logout")
	}

	status := srv.do(t, http.MethodGet, "/api/auth/status", nil, cookie, flash)
	body := decodeStatus(t, status)
	if !body.NeedsAuth {
		t.Error("Expected needsAuth after logout")
	}
	if body.Flash != flashLoggedOut {
		t.Errorf("Expected flash %q, got %q", flashLoggedOut, body.Flash)
	}
	if cleared := findCookie(status, "watchstats_flash"); cleared == nil || cleared.MaxAge >= 0 {
		t.Error("Expected status probe to clear the flash cookie")
	}

	expectError(t, srv.do(t, http.MethodGet, "/api/stats", nil, cookie), http.StatusUnauthorized, ErrCodeUnauthorized)
}

func TestLogin_RotatesSession(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{loginEnabled: true})
	first := srv.login(t)

	rec := srv.do(t, http.MethodPost, "/api/auth/login", map[string]string{"password": testLoginPassword}, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	second := findCookie(rec, "watchstats_session")
	if second == nil || second.Value == first.Value {
		t.Fatal("Expected a new session ID on re-login")
	}
	if srv.sessions.Len() != 1 {
		t.Errorf("Expected the old session to be deleted, %d stored", srv.sessions.Len())
	}
}

func TestLogin_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		opts   serverOptions
		body   interface{}
		status int
		code   string
	}{
		{"setup incomplete", serverOptions{skipSetup: true}, map[string]string{"password": "x"}, http.StatusPreconditionFailed, ErrCodeSetupRequired},
		{"gate disabled", serverOptions{}, map[string]string{"password": testLoginPassword}, http.StatusBadRequest, ErrCodeBadRequest},
		{"missing password", serverOptions{loginEnabled: true}, map[string]string{}, http.StatusBadRequest, ErrCodeValidationFailed},
		{"wrong password", serverOptions{loginEnabled: true}, map[string]string{"password": "nope"}, http.StatusUnauthorized, ErrCodeInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newTestServer(t, tt.opts)
			rec := srv.do(t, http.MethodPost, "/api/auth/login", tt.body)
			expectError(t, rec, tt.status, tt.code)
			if findCookie(rec, "watchstats_session") != nil {
				t.Error("Rejected login must not set a session cookie")
			}
		})
	}
}

func TestLogin_LockoutRejectsBeforeVerifying(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{loginEnabled: true, maxAttempts: 3})
	wrong := map[string]string{"password": "wrong"}

	for i := 0; i < 2; i++ {
		expectError(t, srv.do(t, http.MethodPost, "/api/auth/login", wrong), http.StatusUnauthorized, ErrCodeInvalidCredentials)
	}

	third := srv.do(t, http.MethodPost, "/api/auth/login", wrong)
	expectError(t, third, http.StatusTooManyRequests, ErrCodeAccountLocked)

	rec := srv.do(t, http.MethodPost, "/api/auth/login", map[string]string{"password": testLoginPassword})
	expectError(t, rec, http.StatusTooManyRequests, ErrCodeAccountLocked)

	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	if err != nil || retry < 1 || retry > 60 {
		t.Errorf("Expected Retry-After between 1 and 60 seconds, got %q", rec.Header().Get("Retry-After"))
	}
	if findCookie(rec, "watchstats_session") != nil {
		t.Error("Locked client must not receive a session")
	}
}

func TestLogin_LockoutIsPerClient(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{loginEnabled: true, maxAttempts: 1})
	expectError(t, srv.do(t, http.MethodPost, "/api/auth/login", map[string]string{"password": "wrong"}),
		http.StatusTooManyRequests, ErrCodeAccountLocked)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(t, map[string]string{"password": testLoginPassword}))
	req.Header.Set("X-Real-IP", "198.51.100.7")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected another client to log in, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLogin_StrictRateLimit(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{loginEnabled: true, loginRateReqs: 2, maxAttempts: 100})
	wrong := map[string]string{"password": "wrong"}

	for i := 0; i < 2; i++ {
		expectError(t, srv.do(t, http.MethodPost, "/api/auth/login", wrong), http.StatusUnauthorized, ErrCodeInvalidCredentials)
	}
	rec := srv.do(t, http.MethodPost, "/api/auth/login", wrong)
	expectError(t, rec, http.StatusTooManyRequests, ErrCodeTooManyRequests)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After on rate limit")
	}
}

func TestAuthStatus_GateDisabled(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{})
	if decodeStatus(t, srv.do(t, http.MethodGet, "/api/auth/status", nil)).NeedsAuth {
		t.Error("Expected needsAuth=false with the gate disabled")
	}
	if rec := srv.do(t, http.MethodGet, "/api/stats", nil); rec.Code != http.StatusOK {
		t.Errorf("Expected open stats with the gate disabled, got %d", rec.Code)
	}
}

func TestAuthStatus_StaleCookie(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{loginEnabled: true})
	stale := &http.Cookie{Name: "watchstats_session", Value: "deadbeef"}
	if !decodeStatus(t, srv.do(t, http.MethodGet, "/api/auth/status", nil, stale)).NeedsAuth {
		t.Error("Unknown session ID must read as needsAuth")
	}
}

func TestLogout_WithoutSession(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{loginEnabled: true})
	rec := srv.do(t, http.MethodPost, "/api/auth/logout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if findCookie(rec, "watchstats_flash") == nil {
		t.Error("Expected flash cookie")
	}
}
