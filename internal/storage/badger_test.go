// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

package storage

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/watchstats/internal/logging"
)

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()

	db, err := Open(Options{Path: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return db
}

func TestOpen_RequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(Options{}); !errors.Is(err, ErrPathRequired) {
		t.Errorf("Open() error = %v, want ErrPathRequired", err)
	}
}

func TestOpen_GCRatioDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ratio float64
		want  float64
	}{
		{"zero", 0, DefaultGCRatio},
		{"negative", -1, DefaultGCRatio},
		{"one", 1, DefaultGCRatio},
		{"custom", 0.7, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, err := Open(Options{Path: t.TempDir(), GCRatio: tt.ratio})
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer db.Close()

			if db.gcRatio != tt.want {
				t.Errorf("gcRatio = %v, want %v", db.gcRatio, tt.want)
			}
		})
	}
}

func TestDB_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	db := openTestDB(t, dir)
	err := db.Badger().Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("session:abc"), []byte("value"))
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	db = openTestDB(t, dir)
	defer db.Close()

	var got []byte
	err = db.Badger().View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("session:abc"))
		if err != nil {
			return err
		}
		got, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if string(got) != "value" {
		t.Errorf("value = %q, want %q", got, "value")
	}
}

func TestDB_RunGC(t *testing.T) {
	t.Parallel()

	db := openTestDB(t, t.TempDir())
	defer db.Close()

	n, err := db.RunGC(context.Background())
	if err != nil {
		t.Fatalf("RunGC() error = %v", err)
	}
	if n != 0 {
		t.Errorf("RunGC() rewrote %d files on an empty DB, want 0", n)
	}
}

func TestDB_RunGCCancelled(t *testing.T) {
	t.Parallel()

	db := openTestDB(t, t.TempDir())
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := db.RunGC(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("RunGC() error = %v, want context.Canceled", err)
	}
}

func TestBadgerLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verbose bool
		log     func(l *badgerLogger)
		want    string
	}{
		{"error always", false, func(l *badgerLogger) { l.Errorf("disk %s\n", "full") }, "disk full"},
		{"warning always", false, func(l *badgerLogger) { l.Warningf("slow") }, "slow"},
		{"info dropped", false, func(l *badgerLogger) { l.Infof("replaying") }, ""},
		{"debug dropped", false, func(l *badgerLogger) { l.Debugf("flush") }, ""},
		{"info verbose", true, func(l *badgerLogger) { l.Infof("replaying") }, "replaying"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := &badgerLogger{logger: logging.NewTestLogger(&buf), verbose: tt.verbose}
			tt.log(l)

			out := buf.String()
			if tt.want == "" {
				if out != "" {
					t.Errorf("output = %q, want none", out)
				}
				return
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want it to contain %q", out, tt.want)
			}
			if strings.Contains(out, `\n"`) {
				t.Errorf("output = %q keeps the trailing newline", out)
			}
		})
	}
}
