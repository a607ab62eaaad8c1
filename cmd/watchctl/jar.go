// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// sessionFileData is the on-disk form of the jar. Cookies are bound to the
// server they came from and ignored when a different server is targeted.
type sessionFileData struct {
	Server  string        `json:"server"`
	Cookies []savedCookie `json:"cookies"`
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// fileJar is a cookiejar.Jar whose cookies for one server survive between
// invocations.
type fileJar struct {
	*cookiejar.Jar
	path   string
	server *url.URL
}

// openFileJar loads path if it exists. An empty path keeps cookies in
// memory only.
func openFileJar(path, server string) (*fileJar, error) {
	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("parse server URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	j := &fileJar{Jar: jar, path: path, server: u}
	if path == "" {
		return j, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var data sessionFileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse session file %s: %w", path, err)
	}
	if data.Server != u.String() {
		return j, nil
	}

	cookies := make([]*http.Cookie, 0, len(data.Cookies))
	for _, c := range data.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(u, cookies)
	return j, nil
}

// Save writes the current cookies for the server. The file is replaced
// atomically and readable by the owner only.
func (j *fileJar) Save() error {
	if j.path == "" {
		return nil
	}

	data := sessionFileData{Server: j.server.String(), Cookies: []savedCookie{}}
	for _, c := range j.Cookies(j.server) {
		data.Cookies = append(data.Cookies, savedCookie{Name: c.Name, Value: c.Value})
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmpName, j.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
