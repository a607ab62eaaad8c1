// Watchstats - Personal Media Tracking Statistics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchstats

/*
Package storage opens the BadgerDB instance shared by the session store and
the stats cache.

Both consumers keep their keys under their own prefix ("session:" and
"cache:"), so one directory holds all persistent state apart from the
secrets file.

# Usage

	db, err := storage.Open(storage.Options{Path: cfg.Storage.BadgerPath()})
	if err != nil {
		return err
	}
	defer db.Close()

	sessions := auth.NewBadgerSessionStore(db.Badger())
	statsCache := cache.NewBadgerStore(db.Badger())

Entries carry badger TTLs, so expired data stays on disk until the value log
is compacted. The janitor service calls RunGC periodically.
*/
package storage
