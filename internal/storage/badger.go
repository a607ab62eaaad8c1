// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/rs/zerolog"

	"github.com/tomtom215/watchstats/internal/logging"
)

// DefaultGCRatio is the discard ratio passed to RunValueLogGC.
const DefaultGCRatio = 0.5

// ErrPathRequired is returned by Open when no directory is given.
var ErrPathRequired = errors.New("storage: path is required")

// Options configures Open.
type Options struct {
	// Path is the badger directory. Required.
	Path string

	// SyncWrites fsyncs every write. Default: false
	SyncWrites bool

	// Compression enables snappy block compression.
	Compression bool

	// GCRatio is the value log discard ratio. Default: DefaultGCRatio
	GCRatio float64

	// Verbose routes badger's internal info and debug output to the logger.
	Verbose bool
}

// DB is an open BadgerDB with value log maintenance.
type DB struct {
	db      *badger.DB
	gcRatio float64
	logger  zerolog.Logger
}

// Open opens or creates the database at opts.Path.
func Open(opts Options) (*DB, error) {
	if opts.Path == "" {
		return nil, ErrPathRequired
	}

	logger := logging.WithComponent("storage")

	bopts := badger.DefaultOptions(opts.Path)
	bopts.SyncWrites = opts.SyncWrites
	if opts.Compression {
		bopts.Compression = options.Snappy
	}
	bopts.Logger = &badgerLogger{logger: logger, verbose: opts.Verbose}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB at %s: %w", opts.Path, err)
	}

	ratio := opts.GCRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = DefaultGCRatio
	}

	logger.Info().Str("path", opts.Path).Msg("BadgerDB opened")
	return &DB{db: db, gcRatio: ratio, logger: logger}, nil
}

// Badger returns the underlying handle for stores that share the database.
func (d *DB) Badger() *badger.DB {
	return d.db
}

// RunGC rewrites value log files until badger reports nothing left to
// reclaim. It returns the number of files rewritten.
func (d *DB) RunGC(ctx context.Context) (int, error) {
	rewritten := 0
	for {
		if err := ctx.Err(); err != nil {
			return rewritten, err
		}
		err := d.db.RunValueLogGC(d.gcRatio)
		switch {
		case err == nil:
			rewritten++
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected):
			if rewritten > 0 {
				d.logger.Debug().Int("files", rewritten).Msg("Value log GC completed")
			}
			return rewritten, nil
		default:
			return rewritten, fmt.Errorf("value log GC: %w", err)
		}
	}
}

// Close flushes and closes the database.
func (d *DB) Close() error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	return nil
}

// badgerLogger adapts zerolog to badger.Logger. Badger is chatty at info
// level, so info and debug are dropped unless verbose is set.
type badgerLogger struct {
	logger  zerolog.Logger
	verbose bool
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msg(trimf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msg(trimf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	if l.verbose {
		l.logger.Info().Msg(trimf(format, args...))
	}
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	if l.verbose {
		l.logger.Debug().Msg(trimf(format, args...))
	}
}

// trimf formats a badger message without its trailing newline.
func trimf(format string, args ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
