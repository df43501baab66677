// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database: it lives inside your Go binary as a single file.
// That is exactly what a local cache needs: it survives restarts, needs no server,
// and is scoped to the machine the app runs on. The same engine also backs the
// table store service, where each remote "sheet" is a set of rows.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// modernc.org/sqlite is a pure Go translation of the SQLite C code, so no C compiler is
// needed and it works everywhere Go works.
//
// ONE CONNECTION:
// The pool is capped at a single connection. The cache is owned by one running
// instance, so there is no concurrency to gain, and ":memory:" databases are
// per-connection: a second pooled connection would see an empty database.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. It implements both repository.Cache
// and repository.TableRepository; a process normally uses only one of them.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/township.db"  → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	// Ping verifies the connection actually works.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL keeps a crash mid-write from corrupting the last good snapshot.
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

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the tables if they do not exist yet.
//
// cache_entries mirrors browser-style key/value storage: one JSON document per
// collection plus one for the session.
//
// sheets / sheet_rows back the table store. Position 0 of every sheet is its
// header row; cells are stored as a JSON array of strings.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS cache_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating cache_entries table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS sheets (
			name       TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS sheet_rows (
			sheet    TEXT NOT NULL REFERENCES sheets(name),
			position INTEGER NOT NULL,
			cells    TEXT NOT NULL,
			PRIMARY KEY (sheet, position)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating sheet tables: %w", err)
	}

	return nil
}
