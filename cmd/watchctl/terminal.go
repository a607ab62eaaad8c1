// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tomtom215/watchstats/internal/guard"
)

// terminal renders guard side effects as lines on w. It is both the
// guard's View and its Navigator.
type terminal struct {
	mu            sync.Mutex
	w             io.Writer
	server        string
	view          *guard.Visibility
	setupRequired atomic.Bool
}

func newTerminal(w io.Writer, server string) *terminal {
	t := &terminal{w: w, server: strings.TrimSuffix(server, "/")}
	t.view = guard.NewVisibility(func(el guard.Element, visible bool) {
		if el == guard.ElementLoginPrompt && visible {
			t.println("Login required. Run 'watchctl login'.")
		}
	})
	t.view.OnFlash(t.println)
	return t
}

// Navigate reports that first-run setup must be finished in a browser.
func (t *terminal) Navigate(path string) {
	t.setupRequired.Store(true)
	t.println(fmt.Sprintf("Setup has not been completed. Open %s%s in a browser.", t.server, path))
}

// SetupRequired reports whether the last probe was answered with 412.
func (t *terminal) SetupRequired() bool {
	return t.setupRequired.Load()
}

func (t *terminal) println(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, line)
}
