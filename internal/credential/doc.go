// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

// Package credential hashes and verifies the small set of stored secrets
// Watchstats keeps: the login gate password and the full rebuild password.
//
// A stored credential is a Record, one opaque string of the form
//
//	salt:hash
//
// where salt is 16 random bytes rendered as hex and hash is the hex encoding
// of a 64-byte scrypt key derived from the plaintext and that salt. The text
// form is meant to be pasted into hand-edited YAML, so both halves are plain
// hex and the Record splits on its first ':'.
//
// # Usage
//
//	record, err := credential.Hash(password)
//	if err != nil {
//	    return err
//	}
//	ok := credential.Verify(attempt, record)
//
// Verify fails closed: an empty or malformed Record verifies to false and is
// indistinguishable from a wrong password.
package credential
