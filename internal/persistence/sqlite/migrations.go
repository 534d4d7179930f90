package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migration pairs a monotonically increasing version with the statements that
// bring the schema to that version.
type migration struct {
	version    int
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS categories (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				is_active INTEGER NOT NULL DEFAULT 1,
				sort_order INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				category_id TEXT REFERENCES categories(id),
				description TEXT NOT NULL DEFAULT '',
				start_utc TEXT NOT NULL,
				end_utc TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_start_utc ON sessions(start_utc)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_end_utc ON sessions(end_utc)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_category_id ON sessions(category_id)`,
		},
	},
}

// Migrate applies any pending schema migrations, recording applied versions in
// the schema_migrations table.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	if _, err := pool.DB().ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		applied, err := migrationApplied(ctx, pool, m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		err = pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d failed: %w", m.version, err)
				}
			}
			_, err := tx.Exec(
				`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
				m.version, time.Now().UTC().Format(time.RFC3339),
			)
			if err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func migrationApplied(ctx context.Context, pool *ConnectionPool, version int) (bool, error) {
	var count int
	err := pool.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema_migrations: %w", err)
	}
	return count > 0, nil
}

// defaultCategoryNames are seeded, in this order, on first initialization only.
var defaultCategoryNames = []string{"Coding", "Meetings", "Support", "Planning", "Admin"}

// SeedDefaultCategories inserts the default category set when the categories
// table is empty. Subsequent calls are no-ops, so deliberately emptied category
// lists stay empty.
func SeedDefaultCategories(ctx context.Context, pool *ConnectionPool, idGenerator func() string, now func() time.Time) error {
	if idGenerator == nil || now == nil {
		return fmt.Errorf("seed requires an id generator and clock")
	}

	return pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
			return fmt.Errorf("failed to count categories: %w", err)
		}
		if count > 0 {
			return nil
		}

		createdAt := now().UTC().Format(time.RFC3339)
		for i, name := range defaultCategoryNames {
			_, err := tx.Exec(
				`INSERT INTO categories (id, name, is_active, sort_order, created_at) VALUES (?, ?, 1, ?, ?)`,
				idGenerator(), name, (i+1)*10, createdAt,
			)
			if err != nil {
				return fmt.Errorf("failed to seed category %q: %w", name, err)
			}
		}
		return nil
	})
}
