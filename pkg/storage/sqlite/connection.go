// Package sqlite owns the process's single SQLite database: opening it with
// the right pragmas, serializing access through the connection pool, and
// applying schema migrations at startup.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ConnectionConfig holds database connection configuration.
type ConnectionConfig struct {
	// Path is the database file. ":memory:" opens an in-memory database
	// (used by tests).
	Path string

	// BusyTimeout bounds how long a statement waits on the file lock
	// before failing, so lock acquisition can never queue unboundedly.
	BusyTimeout time.Duration

	// PingTimeout bounds the connectivity check performed at open.
	PingTimeout time.Duration
}

// DefaultConnectionConfig returns the production defaults.
func DefaultConnectionConfig(path string) ConnectionConfig {
	return ConnectionConfig{
		Path:        path,
		BusyTimeout: 5 * time.Second,
		PingTimeout: 5 * time.Second,
	}
}

// Open opens (creating if absent) the SQLite database described by config.
//
// The pool is capped at one connection, making database/sql the process-wide
// mutual-exclusion guard: every query from the HTTP layer and the ingestion
// scheduler is serialized through the pool's wait queue, and waits are
// cancellable via context. Foreign keys are switched on so the feed->item
// cascade applies.
func Open(config ConnectionConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on&_loc=UTC",
		config.Path, config.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), config.PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// OpenInMemory opens a private in-memory database for tests.
func OpenInMemory() (*sql.DB, error) {
	cfg := DefaultConnectionConfig(":memory:")
	cfg.BusyTimeout = time.Second
	return Open(cfg)
}
