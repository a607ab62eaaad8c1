// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/watchstats/internal/logging"
)

func TestResponseWriter_Success(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	r = r.WithContext(logging.ContextWithRequestID(r.Context(), "req-123"))

	NewResponseWriter(w, r).Success(map[string]string{"message": "hello"})

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Unexpected Content-Type %q", got)
	}

	var response APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !response.Success {
		t.Error("Expected Success to be true")
	}
	if response.Error != nil {
		t.Error("Expected Error to be nil")
	}
	if response.Meta == nil {
		t.Fatal("Expected Meta to not be nil")
	}
	if response.Meta.Timestamp.IsZero() {
		t.Error("Expected Timestamp to be set")
	}
	if response.Meta.RequestID != "req-123" {
		t.Errorf("Expected request ID req-123, got %q", response.Meta.RequestID)
	}
}

func TestResponseWriter_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		write  func(*ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(rw *ResponseWriter) { rw.BadRequest("bad") }, http.StatusBadRequest, ErrCodeBadRequest},
		{"unauthorized", func(rw *ResponseWriter) { rw.Unauthorized("who") }, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"forbidden", func(rw *ResponseWriter) { rw.Forbidden("no") }, http.StatusForbidden, ErrCodeForbidden},
		{"not found", func(rw *ResponseWriter) { rw.NotFound("gone") }, http.StatusNotFound, ErrCodeNotFound},
		{"setup required", func(rw *ResponseWriter) { rw.SetupRequired() }, http.StatusPreconditionFailed, ErrCodeSetupRequired},
		{"too many", func(rw *ResponseWriter) { rw.TooManyRequests("slow") }, http.StatusTooManyRequests, ErrCodeTooManyRequests},
		{"internal", func(rw *ResponseWriter) { rw.InternalError("oops") }, http.StatusInternalServerError, ErrCodeInternalError},
		{"unavailable", func(rw *ResponseWriter) { rw.ServiceUnavailable("later") }, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"validation", func(rw *ResponseWriter) { rw.ValidationError("invalid", map[string]string{"field": "x"}) }, http.StatusBadRequest, ErrCodeValidationFailed},
		{"external", func(rw *ResponseWriter) { rw.ExternalServiceError("tracker", errors.New("boom")) }, http.StatusBadGateway, ErrCodeExternalServiceFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/test", nil)
			r = r.WithContext(logging.ContextWithRequestID(r.Context(), "req-err"))
			tt.write(NewResponseWriter(w, r))

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}

			var response APIResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}
			if response.Success {
				t.Error("Expected Success to be false")
			}
			if response.Error == nil {
				t.Fatal("Expected Error to be set")
			}
			if response.Error.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, response.Error.Code)
			}
			if response.Error.RequestID != "req-err" {
				t.Errorf("Expected request ID on error, got %q", response.Error.RequestID)
			}
		})
	}
}

func TestResponseWriter_RawMessageData(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	WriteSuccess(w, r, json.RawMessage(`{"plays":7}`))

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if string(env.Data) != `{"plays":7}` {
		t.Errorf("Expected raw data embedded unchanged, got %s", env.Data)
	}
}
