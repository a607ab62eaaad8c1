// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityEvent represents a security-relevant event for audit logging.
type SecurityEvent struct {
	// Event is the type of event (e.g., "login_success", "setup_completed").
	Event string
	// SessionID is the session identifier (sanitized before output).
	SessionID string
	// IPAddress is the client's IP address.
	IPAddress string
	// UserAgent is the client's user agent (truncated).
	UserAgent string
	// Success indicates if the operation was successful.
	Success bool
	// Reason explains a failure. It must never contain a credential.
	Reason string
}

// SecurityLogger writes authentication events with sensitive fields sanitized.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a new security logger on top of the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{
		logger: With().Str("component", "auth").Logger(),
	}
}

// NewSecurityLoggerWithLogger creates a security logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// LogEvent logs a security event.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	e := l.logger.Info()
	if !event.Success {
		e = l.logger.Warn()
	}
	e = e.Str("event", event.Event)

	if event.Success {
		e = e.Str("status", "success")
	} else {
		e = e.Str("status", "failed")
	}
	if event.SessionID != "" {
		e = e.Str("session_id", SanitizeSessionID(event.SessionID))
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.UserAgent != "" {
		e = e.Str("user_agent", truncateString(event.UserAgent, 100))
	}
	if event.Reason != "" && !event.Success {
		e = e.Str("reason", truncateString(event.Reason, 200))
	}

	e.Msg("")
}

// LogLoginSuccess logs a successful login.
func (l *SecurityLogger) LogLoginSuccess(sessionID, ip, userAgent string) {
	l.LogEvent(&SecurityEvent{
		Event:     "login_success",
		SessionID: sessionID,
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   true,
	})
}

// LogLoginFailure logs a failed login.
func (l *SecurityLogger) LogLoginFailure(ip, userAgent, reason string) {
	l.LogEvent(&SecurityEvent{
		Event:     "login_failed",
		IPAddress: ip,
		UserAgent: userAgent,
		Reason:    reason,
	})
}

// LogLogout logs a logout.
func (l *SecurityLogger) LogLogout(sessionID, ip string) {
	l.LogEvent(&SecurityEvent{
		Event:     "logout",
		SessionID: sessionID,
		IPAddress: ip,
		Success:   true,
	})
}

// LogSetup logs a setup wizard submission.
func (l *SecurityLogger) LogSetup(ip string, success bool, reason string) {
	l.LogEvent(&SecurityEvent{
		Event:     "setup_completed",
		IPAddress: ip,
		Success:   success,
		Reason:    reason,
	})
}

// LogRebuild logs a full rebuild request.
func (l *SecurityLogger) LogRebuild(sessionID, ip string, success bool) {
	l.LogEvent(&SecurityEvent{
		Event:     "rebuild",
		SessionID: sessionID,
		IPAddress: ip,
		Success:   success,
	})
}

// SanitizeSessionID masks a session identifier, keeping 4 characters at each end.
func SanitizeSessionID(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	if len(sessionID) <= 12 {
		return "***"
	}
	return sessionID[:4] + "..." + sessionID[len(sessionID)-4:]
}

// SanitizeError replaces error text that mentions a secret with a generic message.
func SanitizeError(err string) string {
	lowerErr := strings.ToLower(err)
	for _, pattern := range []string{"password", "secret", "token", "key", "cookie", "hash"} {
		if strings.Contains(lowerErr, pattern) {
			return "authentication error"
		}
	}
	return truncateString(err, 200)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
