// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere
// Go works.
//
// CONSISTENCY MODEL:
// The denormalized like_count on playlists is only ever touched inside the
// same transaction that inserts or deletes the like row (see engagement.go),
// and every counter change is a store-side delta (`like_count = like_count
// + 1`), never a read-modify-write from Go. Combined with the UNIQUE
// (user_id, playlist_id) constraints, that is the entire concurrency story:
// no in-process locks, no retry loops.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// The driver registers itself with database/sql under the name "sqlite".
	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/moodtune.db"  → file-based database (persistent)
//   - ":memory:"          → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite has a single writer; funnelling everything through one pooled
	// connection avoids SQLITE_BUSY under write contention. It also keeps
	// ":memory:" databases coherent — every pool connection would otherwise
	// get its own empty in-memory database.
	conn.SetMaxOpenConns(1)

	// Ping verifies the connection actually works. Without this, a bad path
	// or permissions issue would only surface on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is happening.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. We need them ON: deleting
	// a playlist must cascade to its likes, bookmarks, and comments.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS is idempotent, so
// this is safe to run on every startup.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			uid          TEXT NOT NULL UNIQUE,
			email        TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT '',
			photo_url    TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// tags/tracks/videos are JSON-encoded TEXT. Tag containment queries go
	// through json_each (see playlist.go), so tags must always hold a valid
	// JSON array — the repository writes '[]', never ''.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS playlists (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category    TEXT NOT NULL DEFAULT '',
			tags        TEXT NOT NULL DEFAULT '[]',
			tracks      TEXT NOT NULL DEFAULT '[]',
			videos      TEXT NOT NULL DEFAULT '[]',
			is_public   INTEGER NOT NULL DEFAULT 1,
			like_count  INTEGER NOT NULL DEFAULT 0 CHECK (like_count >= 0),
			play_count  INTEGER NOT NULL DEFAULT 0 CHECK (play_count >= 0),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_playlists_user_id ON playlists(user_id);
		CREATE INDEX IF NOT EXISTS idx_playlists_public_created ON playlists(is_public, created_at);
		CREATE INDEX IF NOT EXISTS idx_playlists_public_likes ON playlists(is_public, like_count);
	`)
	if err != nil {
		return fmt.Errorf("creating playlists table: %w", err)
	}

	// UNIQUE (user_id, playlist_id) is the concurrency-correctness
	// mechanism for engagements: when two simultaneous requests both see
	// "no existing like", the store rejects the second insert.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS likes (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, playlist_id)
		);
		CREATE INDEX IF NOT EXISTS idx_likes_playlist_id ON likes(playlist_id);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, playlist_id)
		);
		CREATE INDEX IF NOT EXISTS idx_bookmarks_user_id ON bookmarks(user_id);

		CREATE TABLE IF NOT EXISTS comments (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			content     TEXT NOT NULL,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_playlist_id ON comments(playlist_id);
	`)
	if err != nil {
		return fmt.Errorf("creating engagement tables: %w", err)
	}

	return nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error. The error from fn is returned as-is so apperror values
// (Conflict, NotFound) survive the trip to the caller.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure. This is how a duplicate like/bookmark surfaces from
// the driver — the extended result code identifies the constraint class.
func isUniqueViolation(err error) bool {
	var serr *sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE ||
		serr.Code() == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY
}

// isForeignKeyViolation reports whether err is a FOREIGN KEY constraint
// failure — inserting an engagement row for a playlist that doesn't exist.
func isForeignKeyViolation(err error) bool {
	var serr *sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY
}
