package store

import (
	_ "modernc.org/sqlite" // pure-Go driver, no cgo toolchain required
)

// SQLiteStore persists to a single-file SQLite database, suited to
// development and single-process deployments where a full MySQL
// instance would be overkill.
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens (and migrates, if needed) a SQLite database at
// path. Use ":memory:" for an ephemeral in-process database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	s, err := openSQLStore("sqlite", path,
		`CREATE TABLE IF NOT EXISTS search_solutions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			objective REAL NOT NULL,
			owner_id INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS search_checkpoints (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			step INTEGER NOT NULL,
			incumbent REAL NOT NULL,
			saved_at DATETIME NOT NULL
		)`)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{sqlStore: s}, nil
}
