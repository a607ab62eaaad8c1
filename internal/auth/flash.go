// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package auth

import (
	"encoding/base64"
	"net/http"
)

// maxFlashLen bounds a flash message before encoding.
const maxFlashLen = 256

// SetFlash stores a one-shot message that the next ConsumeFlash returns.
func (m *SessionMiddleware) SetFlash(w http.ResponseWriter, message string) {
	if len(message) > maxFlashLen {
		message = message[:maxFlashLen]
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(message)),
		Path:     m.config.CookiePath,
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: m.config.CookieSameSite,
	})
}

// ConsumeFlash returns the pending flash message and clears it. Undecodable
// values are cleared and read as empty.
func (m *SessionMiddleware) ConsumeFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(m.config.FlashCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.config.FlashCookieName,
		Value:    "",
		Path:     m.config.CookiePath,
		MaxAge:   -1,
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: m.config.CookieSameSite,
	})

	decoded, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}
