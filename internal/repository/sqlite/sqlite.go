// Package sqlite implements the credential store using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside the Go binary as a single
// file. No separate database server to install, configure, or manage, which
// matches the deployment model here: one process, one disk, a few thousand
// accounts.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C
// compiler installed and cross-compilation becomes painful. modernc.org/sqlite
// is a pure Go translation of the SQLite C code — no C compiler needed,
// works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"

	// BLANK IMPORT:
	// The underscore import is a "side-effect only" import. The sqlite
	// package's init() registers itself with database/sql as a driver named
	// "sqlite"; after this import, sql.Open("sqlite", ...) knows how to talk
	// to SQLite.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements
// repository.UserRepository.
//
// WHY WRAP sql.DB IN A STRUCT?
// 1. We can attach the repository methods to it (Create, GetByEmail, ...)
// 2. We can add more fields later (logger, prepared statements)
// 3. We control the lifecycle (New creates it, Close destroys it)
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/locallynk.db"  → file-based database (persistent)
//   - ":memory:"           → in-memory database (used by the tests)
//
// sql.Open does NOT actually open a connection — it creates a pool manager.
// Ping forces an immediate connection so a bad path or permissions problem
// surfaces here instead of on the first signup.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// ONE CONNECTION, NOT A POOL:
	// SQLite allows a single writer at a time; a pool of connections just
	// converts write contention into SQLITE_BUSY errors. Capping the pool
	// at one serializes writes inside database/sql instead. It also makes
	// ":memory:" behave: the modernc driver gives each connection its OWN
	// in-memory database, so a pool would scatter the tables.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL (Write-Ahead Logging) mode:
	// Default SQLite locks the entire database during writes. WAL allows
	// concurrent reads WHILE a write is happening — relevant for a web
	// server where a signup INSERT and login SELECTs overlap.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. The server defers this during
// shutdown so the WAL is flushed and the file lock released.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the users table if it does not exist.
//
// The UNIQUE index on email is the single point that enforces the
// one-account-per-email invariant, including under concurrent signups:
// SQLite serializes the two INSERTs and the second one fails with a
// constraint violation, which Create maps to apperror.ErrConflict. Emails
// are stored pre-normalized (lower-case, trimmed), so a plain UNIQUE index
// gives case-insensitive uniqueness.
//
// Note there is deliberately NO unique index on username — usernames are
// display names and may collide.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			dob           DATETIME NOT NULL,
			age           INTEGER NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	return nil
}
