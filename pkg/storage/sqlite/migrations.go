package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration represents a database migration.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations returns the ordered schema definitions. New tables and
// constraints are appended as new versions; existing entries never change.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create keys table",
			SQL: `
				CREATE TABLE IF NOT EXISTS keys (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					access TEXT NOT NULL UNIQUE,
					secret TEXT NOT NULL,
					description TEXT,
					expired_at DATETIME
				);
			`,
		},
		{
			Version:     2,
			Description: "Create feeds table",
			SQL: `
				CREATE TABLE IF NOT EXISTS feeds (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					title TEXT NOT NULL,
					link TEXT NOT NULL,
					status TEXT NOT NULL DEFAULT 'subscribed'
						CHECK (status IN ('subscribed', 'unsubscribed')),
					checked_at DATETIME NOT NULL,
					fetch_old_items BOOLEAN NOT NULL DEFAULT 1
				);

				CREATE UNIQUE INDEX IF NOT EXISTS uk_feeds_title_link ON feeds(title, link);
			`,
		},
		{
			Version:     3,
			Description: "Create items table",
			SQL: `
				CREATE TABLE IF NOT EXISTS items (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					fingerprint TEXT NOT NULL UNIQUE,
					author TEXT,
					title TEXT NOT NULL,
					description TEXT NOT NULL,
					link TEXT NOT NULL,
					status TEXT NOT NULL DEFAULT 'unread'
						CHECK (status IN ('unread', 'read')),
					is_saved INTEGER NOT NULL DEFAULT 0
						CHECK (is_saved IN (0, 1)),
					published_at DATETIME NOT NULL,
					feed INTEGER NOT NULL
						REFERENCES feeds(id) ON DELETE CASCADE ON UPDATE CASCADE
				);

				CREATE INDEX IF NOT EXISTS idx_items_feed ON items(feed);
				CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);
				CREATE INDEX IF NOT EXISTS idx_items_published_at ON items(published_at);
			`,
		},
	}
}

// Migrate applies all pending migrations in version order. Each migration
// runs in its own transaction together with its tracking row, so a partial
// apply never leaves the schema half-migrated. Any DDL error is returned to
// the caller; schema failure at startup is fatal and never retried.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}
	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	for _, migration := range Migrations() {
		if applied[migration.Version] {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
			migration.Version, migration.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
