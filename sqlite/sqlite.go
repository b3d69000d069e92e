// Package sqlite provides SQLite-based storage implementations for siteindex
// services, including the FTS5 full-text index over chunks.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	// This also keeps ":memory:" databases on a single shared connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Wait 5 seconds before failing on lock contention.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, opts)
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// createSchema creates the database tables if they don't exist.
//
// chunks_fts rows share their rowid with the chunk they index, so adding and
// removing index entries is keyed exactly by chunk ID.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS plans (
			plan_id TEXT PRIMARY KEY,
			source_name TEXT NOT NULL UNIQUE,
			root_url TEXT NOT NULL,
			scope_mode TEXT NOT NULL,
			max_pages INTEGER NOT NULL,
			include_json TEXT NOT NULL DEFAULT '[]',
			exclude_json TEXT NOT NULL DEFAULT '[]',
			urls_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS pages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_name TEXT NOT NULL,
			url TEXT NOT NULL,
			title TEXT,
			fetched_at TEXT NOT NULL,
			status_code INTEGER,
			content_text TEXT,
			content_hash TEXT NOT NULL DEFAULT '',
			UNIQUE(source_name, url)
		);

		CREATE INDEX IF NOT EXISTS idx_pages_source_name ON pages(source_name);
		CREATE INDEX IF NOT EXISTS idx_pages_source_fetched ON pages(source_name, fetched_at);

		CREATE TABLE IF NOT EXISTS chunks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			page_id INTEGER NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
			chunk_index INTEGER NOT NULL,
			heading_path TEXT,
			text TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_chunks_page_id ON chunks(page_id);

		CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
			text,
			heading_path,
			url UNINDEXED,
			title UNINDEXED,
			source_name UNINDEXED
		);

		CREATE TABLE IF NOT EXISTS index_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			plan_id TEXT NOT NULL,
			source_name TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			urls_planned INTEGER NOT NULL DEFAULT 0,
			urls_fetched INTEGER NOT NULL DEFAULT 0,
			pages_stored INTEGER NOT NULL DEFAULT 0,
			chunks_stored INTEGER NOT NULL DEFAULT 0,
			failure_count INTEGER NOT NULL DEFAULT 0,
			failures_json TEXT NOT NULL DEFAULT '[]'
		);

		CREATE INDEX IF NOT EXISTS idx_index_runs_source_name ON index_runs(source_name);
	`

	_, err := db.db.Exec(schema)
	return err
}
