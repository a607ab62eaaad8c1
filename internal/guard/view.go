// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package guard

import "sync"

// Element is a piece of UI whose visibility follows the auth state.
type Element int

const (
	ElementLoginPrompt Element = iota
	ElementContent
	ElementFilters
)

func (e Element) String() string {
	switch e {
	case ElementLoginPrompt:
		return "login_prompt"
	case ElementContent:
		return "content"
	case ElementFilters:
		return "filters"
	default:
		return "unknown"
	}
}

// View receives the Guard's UI side effects. Show and Hide may be called
// repeatedly with the same element and must tolerate it.
type View interface {
	Show(el Element)
	Hide(el Element)
	Flash(message string)
}

// Navigator leaves the current screen for another path, used when first-run
// setup has not been completed.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate calls f(path).
func (f NavigatorFunc) Navigate(path string) { f(path) }

type nopView struct{}

func (nopView) Show(Element)  {}
func (nopView) Hide(Element)  {}
func (nopView) Flash(string) {}

// Visibility is an idempotent View. It tracks per-element visibility, with
// every element starting hidden, and reports only real transitions.
type Visibility struct {
	mu       sync.Mutex
	visible  map[Element]bool
	flashes  []string
	onChange func(el Element, visible bool)
	onFlash  func(message string)
}

// NewVisibility returns a Visibility that calls onChange on each transition.
// onChange may be nil.
func NewVisibility(onChange func(el Element, visible bool)) *Visibility {
	return &Visibility{
		visible:  make(map[Element]bool),
		onChange: onChange,
	}
}

// OnFlash registers a callback for flash messages.
func (v *Visibility) OnFlash(fn func(message string)) {
	v.mu.Lock()
	v.onFlash = fn
	v.mu.Unlock()
}

// Show makes el visible. A no-op if it already is.
func (v *Visibility) Show(el Element) { v.set(el, true) }

// Hide makes el hidden. A no-op if it already is.
func (v *Visibility) Hide(el Element) { v.set(el, false) }

// Visible reports whether el is currently shown.
func (v *Visibility) Visible(el Element) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible[el]
}

// Flash records message and forwards it to the OnFlash callback.
func (v *Visibility) Flash(message string) {
	v.mu.Lock()
	v.flashes = append(v.flashes, message)
	fn := v.onFlash
	v.mu.Unlock()

	if fn != nil {
		fn(message)
	}
}

// Flashes returns every flash message received so far.
func (v *Visibility) Flashes() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.flashes))
	copy(out, v.flashes)
	return out
}

func (v *Visibility) set(el Element, visible bool) {
	v.mu.Lock()
	if v.visible[el] == visible {
		v.mu.Unlock()
		return
	}
	v.visible[el] = visible
	fn := v.onChange
	v.mu.Unlock()

	if fn != nil {
		fn(el, visible)
	}
}
