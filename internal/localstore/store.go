// Package localstore is a SQLite implementation of the editor store, used for
// single-user setups, the offline apply tool and tests.
package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/liftplan/internal/editor"

	_ "modernc.org/sqlite"
)

var _ editor.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	login        TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL DEFAULT '',
	last_seen    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS programs (
	id         TEXT PRIMARY KEY,
	user_id    INTEGER NOT NULL,
	name       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS program_weeks (
	id          TEXT PRIMARY KEY,
	program_id  TEXT NOT NULL,
	week_number INTEGER NOT NULL CHECK (week_number > 0),
	UNIQUE (program_id, week_number)
);

CREATE TABLE IF NOT EXISTS program_days (
	id       TEXT PRIMARY KEY,
	week_id  TEXT NOT NULL,
	day_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS exercise_defs (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	equipment TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_exercise_defs_name ON exercise_defs (lower(name));

CREATE TABLE IF NOT EXISTS day_exercises (
	id              TEXT PRIMARY KEY,
	day_id          TEXT NOT NULL,
	exercise_def_id TEXT NOT NULL,
	sets            TEXT,
	reps            TEXT,
	rir             TEXT,
	rpe             TEXT,
	notes           TEXT NOT NULL DEFAULT '',
	exercise_number INTEGER,
	UNIQUE (day_id, exercise_def_id)
);

CREATE TABLE IF NOT EXISTS edit_logs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id       INTEGER NOT NULL,
	program_id    TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	source        TEXT NOT NULL,
	status        TEXT NOT NULL,
	operations    INTEGER NOT NULL DEFAULT 0,
	applied       INTEGER NOT NULL DEFAULT 0,
	skipped       INTEGER NOT NULL DEFAULT 0,
	failed        INTEGER NOT NULL DEFAULT 0,
	duration_ms   INTEGER,
	error_message TEXT,
	result        BLOB
);
`

// Store is a SQLite-backed program store. Timestamps are stored as Unix
// nanoseconds and intervals in their canonical text form.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One connection serializes writers; SQLite would otherwise return
	// SQLITE_BUSY under the reconciler's concurrent updates.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetOrCreateUser finds or creates a user by login name and returns the ID.
func (s *Store) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (login, display_name, last_seen)
		VALUES (?, ?, ?)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = excluded.last_seen,
			    display_name = COALESCE(NULLIF(excluded.display_name, ''), users.display_name)
		RETURNING id
	`, login, displayName, time.Now().UnixNano()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %q: %w", login, err)
	}
	return id, nil
}

// inTx runs fn in a transaction, committing when it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
