// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package credential

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func fastHasher(t *testing.T) *Hasher {
	t.Helper()
	p := DefaultParams()
	p.N = 16
	h, err := NewHasher(p)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func TestHash_Format(t *testing.T) {
	t.Parallel()

	record, err := Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	salt, key, ok := strings.Cut(record, Separator)
	if !ok {
		t.Fatalf("record %q has no separator", record)
	}
	if len(salt) != 2*DefaultSaltLen {
		t.Errorf("salt length = %d, want %d", len(salt), 2*DefaultSaltLen)
	}
	if len(key) != 2*DefaultKeyLen {
		t.Errorf("key length = %d, want %d", len(key), 2*DefaultKeyLen)
	}
	if _, err := hex.DecodeString(salt); err != nil {
		t.Errorf("salt is not hex: %v", err)
	}
	if _, err := hex.DecodeString(key); err != nil {
		t.Errorf("key is not hex: %v", err)
	}
	if strings.Contains(key, Separator) {
		t.Error("key half contains a separator")
	}
}

func TestHashVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	record, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !Verify("correct horse battery staple", record) {
		t.Error("Verify rejected the original password")
	}
	if Verify("correct horse battery stapler", record) {
		t.Error("Verify accepted a different password")
	}
}

func TestHash_FreshSalt(t *testing.T) {
	t.Parallel()
	h := fastHasher(t)

	a, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same input are identical")
	}
	if !h.Verify("same", a) || !h.Verify("same", b) {
		t.Error("both records must verify")
	}
}

func TestHash_EmptyPlaintext(t *testing.T) {
	t.Parallel()
	h := fastHasher(t)

	record, err := h.Hash("")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Verify("", record) {
		t.Error("empty plaintext should verify against its own record")
	}
	if h.Verify("x", record) {
		t.Error("non-empty plaintext verified against empty-password record")
	}
}

func TestVerify_FailsClosed(t *testing.T) {
	t.Parallel()
	h := fastHasher(t)

	tests := []struct {
		name   string
		record string
	}{
		{"empty", ""},
		{"no separator", "deadbeef"},
		{"empty salt", ":abcdef"},
		{"empty key", "abcdef:"},
		{"only separator", ":"},
		{"wrong key", "00112233445566778899aabbccddeeff:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if h.Verify("anything", tt.record) {
				t.Errorf("Verify(%q) = true, want false", tt.record)
			}
		})
	}
}

func TestVerify_SplitsOnFirstSeparator(t *testing.T) {
	t.Parallel()
	h := fastHasher(t)

	record, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h.Verify("pw", record+":trailing") {
		t.Error("extra separator segment must not verify")
	}
}

func TestVerify_CrossParams(t *testing.T) {
	t.Parallel()
	h := fastHasher(t)

	record, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if Verify("pw", record) {
		t.Error("record made with different params verified under defaults")
	}
}

func TestIsHashed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"plaintext", false},
		{"a:b", true},
		{":", true},
		{"pass:word", true}, // syntactic only
	}

	for _, tt := range tests {
		if got := IsHashed(tt.value); got != tt.want {
			t.Errorf("IsHashed(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestIsHashedValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, false},
		{"int", 1234, false},
		{"bool", true, false},
		{"plain string", "secret", false},
		{"record string", "aa:bb", true},
	}

	for _, tt := range tests {
		if got := IsHashedValue(tt.value); got != tt.want {
			t.Errorf("%s: IsHashedValue(%v) = %v, want %v", tt.name, tt.value, got, tt.want)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	t.Parallel()

	if NeedsRehash("") {
		t.Error("empty value should not need a rehash")
	}
	if !NeedsRehash("plain") {
		t.Error("plaintext should need a rehash")
	}
	if NeedsRehash("a:b") {
		t.Error("record should not need a rehash")
	}
}

func TestNewHasher_InvalidParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"N not power of two", func(p *Params) { p.N = 1000 }},
		{"N one", func(p *Params) { p.N = 1 }},
		{"zero r", func(p *Params) { p.R = 0 }},
		{"zero p", func(p *Params) { p.P = 0 }},
		{"short salt", func(p *Params) { p.SaltLen = 8 }},
		{"short key", func(p *Params) { p.KeyLen = 8 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := DefaultParams()
			tt.mutate(&p)
			if _, err := NewHasher(p); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("NewHasher error = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func BenchmarkHash(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := Hash("benchmark-password"); err != nil {
			b.Fatal(err)
		}
	}
}
