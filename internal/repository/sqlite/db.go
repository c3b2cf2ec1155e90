// Package sqlite is the single-file SQL backend: documents and the daily
// credit ledger in one SQLite database.
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/kailas-cloud/docsim/internal/db"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id    TEXT    NOT NULL,
		filename    TEXT    NOT NULL,
		stored_name TEXT    NOT NULL,
		content     TEXT    NOT NULL,
		created_at  INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id, id)`,
	`CREATE TABLE IF NOT EXISTS credit_usage (
		user_id TEXT    NOT NULL,
		day     TEXT    NOT NULL,
		used    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, day)
	)`,
}

// DB is an open SQLite database with the schema applied.
type DB struct {
	x *sqlx.DB
}

// Open connects to the database at path (":memory:" for an in-process
// database) and creates missing tables.
func Open(ctx context.Context, path string) (*DB, error) {
	x, err := sqlx.ConnectContext(ctx, "sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite %s: %w", path, err)
	}
	// One connection: SQLite serializes writers anyway, and every
	// ":memory:" connection would otherwise be its own empty database.
	x.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := x.ExecContext(ctx, stmt); err != nil {
			_ = x.Close()
			return nil, &db.Error{Op: db.OpSchema, Err: err}
		}
	}
	return &DB{x: x}, nil
}

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.x.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close closes the database.
func (d *DB) Close() {
	_ = d.x.Close()
}

// Documents returns the document repository on this database.
func (d *DB) Documents() *DocumentRepo {
	return &DocumentRepo{x: d.x}
}

// Ledger returns the credit ledger on this database.
func (d *DB) Ledger() *Ledger {
	return &Ledger{x: d.x}
}
