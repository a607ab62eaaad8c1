// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// PasswordPolicy defines strength requirements for passwords chosen in the
// setup wizard. Follows NIST SP 800-63B: length over composition rules.
type PasswordPolicy struct {
	// MinLength is the minimum password length in characters.
	MinLength int

	// MaxLength caps the input handed to the KDF.
	MaxLength int

	// MaxConsecutiveRepeats is the maximum allowed consecutive repeated characters (0 = disabled)
	MaxConsecutiveRepeats int

	// ForbidCommonPasswords blocks common/breached passwords
	ForbidCommonPasswords bool
}

// DefaultPasswordPolicy returns the policy for the login password.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:             8,
		MaxLength:             256,
		MaxConsecutiveRepeats: 4,
		ForbidCommonPasswords: true,
	}
}

// RebuildPasswordPolicy returns the stricter policy for the privileged
// full rebuild password.
func RebuildPasswordPolicy() PasswordPolicy {
	p := DefaultPasswordPolicy()
	p.MinLength = 12
	p.MaxConsecutiveRepeats = 3
	return p
}

// Validate checks password against the policy and returns every violation.
func (p PasswordPolicy) Validate(password string) []string {
	var problems []string

	length := utf8.RuneCountInString(password)
	if length < p.MinLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters (got %d)", p.MinLength, length))
	}
	if p.MaxLength > 0 && length > p.MaxLength {
		problems = append(problems, fmt.Sprintf("password must be at most %d characters", p.MaxLength))
	}
	if p.MaxConsecutiveRepeats > 0 && maxConsecutiveRepeats(password) > p.MaxConsecutiveRepeats {
		problems = append(problems,
			fmt.Sprintf("password cannot have more than %d consecutive repeated characters", p.MaxConsecutiveRepeats))
	}
	if p.ForbidCommonPasswords && isCommonPassword(password) {
		problems = append(problems, "password is too common and easily guessable")
	}
	return problems
}

// ValidateWithError is a convenience method that returns an error if validation fails.
func (p PasswordPolicy) ValidateWithError(password string) error {
	if problems := p.Validate(password); len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// maxConsecutiveRepeats returns the maximum number of consecutive repeated characters.
func maxConsecutiveRepeats(password string) int {
	if password == "" {
		return 0
	}
	maxRepeats, current := 1, 1
	var last rune
	for i, r := range password {
		if i > 0 && r == last {
			current++
			if current > maxRepeats {
				maxRepeats = current
			}
		} else {
			current = 1
		}
		last = r
	}
	return maxRepeats
}

// commonPasswords holds breached passwords that must never be accepted.
var commonPasswords = map[string]bool{
	"123456":      true,
	"password":    true,
	"123456789":   true,
	"12345678":    true,
	"1234567890":  true,
	"qwerty":      true,
	"qwertyuiop":  true,
	"password1":   true,
	"password123": true,
	"admin":       true,
	"admin123":    true,
	"letmein":     true,
	"welcome":     true,
	"welcome1":    true,
	"iloveyou":    true,
	"sunshine":    true,
	"trustno1":    true,
	"passw0rd":    true,
	"p@ssw0rd":    true,
	"changeme":    true,
	"football":    true,
	"baseball":    true,
	"superman":    true,
	"abcd1234":    true,
	"1q2w3e4r":    true,
	"11111111":    true,
	"00000000":    true,
	"testing123":  true,
	"watchstats":  true,
	"trakt":       true,
	"traktv":      true,
	"netflix":     true,
	"homelab":     true,
	"letmein123":  true,
}

// isCommonPassword checks the password, case-insensitively, against commonPasswords.
func isCommonPassword(password string) bool {
	return commonPasswords[strings.ToLower(password)]
}
