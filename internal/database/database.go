// Package database stores games, their versioned snapshots, the action log
// and the event history in SQLite.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// pragmas applied to every connection of the empire database.
const pragmas = "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// DB is the empire game database.
type DB struct {
	conn *sql.DB
}

// New opens the game database at dbPath, creating the file and its parent
// directories on first use, and brings the schema up to date.
func New(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open game database: %w", err)
	}
	// Snapshot writes are serialized on one connection.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	ctx := context.Background()
	if err := db.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping game database: %w", err)
	}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate game database: %w", err)
	}
	return db, nil
}

// Close releases the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database answers; the health endpoint uses it.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate applies the schema steps not yet recorded in the migrations table.
func (db *DB) migrate(ctx context.Context) error {
	const ledger = `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`
	if _, err := db.conn.ExecContext(ctx, ledger); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	done, err := db.appliedMigrations(ctx)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if done[m.id] {
			continue
		}
		if err := db.apply(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.id, m.name, err)
		}
	}
	return nil
}

func (db *DB) appliedMigrations(ctx context.Context) (map[int]bool, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT id FROM migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		done[id] = true
	}
	return done, rows.Err()
}

// apply runs one schema step and records it in the same transaction.
func (db *DB) apply(ctx context.Context, m migration) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO migrations (id, name) VALUES (?, ?)", m.id, m.name); err != nil {
		return err
	}
	return tx.Commit()
}
