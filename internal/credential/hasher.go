// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// Separator splits the salt from the derived key inside a Record.
const Separator = ":"

const (
	// DefaultSaltLen is the number of random salt bytes (hex encoded in the Record).
	DefaultSaltLen = 16

	// DefaultKeyLen is the derived key length in bytes.
	DefaultKeyLen = 64
)

// ErrInvalidParams is returned by NewHasher for unusable scrypt parameters.
var ErrInvalidParams = errors.New("credential: invalid scrypt parameters")

// Params are the scrypt cost parameters. Changing them invalidates every
// existing Record, since they are not encoded in the Record itself.
type Params struct {
	// N is the CPU/memory cost; must be a power of two greater than 1.
	N int
	// R is the block size.
	R int
	// P is the parallelization factor.
	P int
	// SaltLen is the random salt length in bytes. Minimum 16.
	SaltLen int
	// KeyLen is the derived key length in bytes.
	KeyLen int
}

// DefaultParams returns the production parameters (N=16384, r=8, p=1),
// which need 16 MiB of memory per derivation.
func DefaultParams() Params {
	return Params{
		N:       1 << 14,
		R:       8,
		P:       1,
		SaltLen: DefaultSaltLen,
		KeyLen:  DefaultKeyLen,
	}
}

// Hasher produces and verifies Records with a fixed set of Params.
type Hasher struct {
	params Params
	rand   io.Reader
}

// NewHasher validates params and returns a Hasher using crypto/rand for salts.
func NewHasher(params Params) (*Hasher, error) {
	if params.N <= 1 || params.N&(params.N-1) != 0 {
		return nil, fmt.Errorf("%w: N must be a power of two > 1, got %d", ErrInvalidParams, params.N)
	}
	if params.R < 1 || params.P < 1 {
		return nil, fmt.Errorf("%w: r and p must be >= 1", ErrInvalidParams)
	}
	if params.SaltLen < DefaultSaltLen {
		return nil, fmt.Errorf("%w: salt must be at least %d bytes, got %d", ErrInvalidParams, DefaultSaltLen, params.SaltLen)
	}
	if params.KeyLen < 16 {
		return nil, fmt.Errorf("%w: key length must be at least 16 bytes, got %d", ErrInvalidParams, params.KeyLen)
	}
	return &Hasher{params: params, rand: rand.Reader}, nil
}

// Hash returns a new Record for plaintext. Each call draws a fresh salt.
func (h *Hasher) Hash(plaintext string) (string, error) {
	raw := make([]byte, h.params.SaltLen)
	if _, err := io.ReadFull(h.rand, raw); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	salt := hex.EncodeToString(raw)

	derived, err := h.derive(plaintext, salt)
	if err != nil {
		return "", err
	}
	return salt + Separator + derived, nil
}

// Verify reports whether plaintext matches record. It never returns an error:
// empty records, records without a separator and KDF failures all verify to false.
func (h *Hasher) Verify(plaintext, record string) bool {
	salt, stored, ok := strings.Cut(record, Separator)
	if !ok || salt == "" || stored == "" {
		return false
	}

	derived, err := h.derive(plaintext, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(derived), []byte(stored)) == 1
}

// derive returns hex(scrypt(plaintext, salt)). The salt is used in its hex text form.
func (h *Hasher) derive(plaintext, salt string) (string, error) {
	key, err := scrypt.Key([]byte(plaintext), []byte(salt), h.params.N, h.params.R, h.params.P, h.params.KeyLen)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// IsHashed reports whether value already looks like a Record.
// This is a syntactic check for configuration authoring, not a security boundary.
func IsHashed(value string) bool {
	return strings.Contains(value, Separator)
}

// IsHashedValue is IsHashed for untyped configuration values. Anything that
// is not a string (numbers, booleans, nil) is never considered hashed.
func IsHashedValue(value any) bool {
	s, ok := value.(string)
	return ok && IsHashed(s)
}

// NeedsRehash reports whether a non-empty stored value must be run through
// Hash before it can be used as a Record.
func NeedsRehash(value string) bool {
	return value != "" && !IsHashed(value)
}

var defaultHasher = mustDefaultHasher()

func mustDefaultHasher() *Hasher {
	h, err := NewHasher(DefaultParams())
	if err != nil {
		panic(err)
	}
	return h
}

// Default returns the package Hasher configured with DefaultParams.
func Default() *Hasher {
	return defaultHasher
}

// Hash creates a Record with DefaultParams.
func Hash(plaintext string) (string, error) {
	return defaultHasher.Hash(plaintext)
}

// Verify checks plaintext against record with DefaultParams.
func Verify(plaintext, record string) bool {
	return defaultHasher.Verify(plaintext, record)
}
