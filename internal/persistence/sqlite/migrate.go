package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migrationStep is a versioned schema change applied exactly once.
type migrationStep struct {
	Version     string
	Description string
	Statements  []string
}

// migrations lists every schema change in application order. Versions are
// recorded in schema_migrations and never re-applied.
var migrations = []migrationStep{
	{
		Version:     "001",
		Description: "initial schema",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT NOT NULL UNIQUE,
				email TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL,
				is_host INTEGER NOT NULL DEFAULT 0,
				password_hash TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS calendars (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				host_id INTEGER NOT NULL UNIQUE REFERENCES users(id),
				topics TEXT NOT NULL DEFAULT '[]',
				description TEXT NOT NULL DEFAULT '',
				google_calendar_id TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS time_slots (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				calendar_id INTEGER NOT NULL REFERENCES calendars(id),
				start_minute INTEGER NOT NULL,
				end_minute INTEGER NOT NULL,
				weekday_mask INTEGER NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				CHECK (start_minute < end_minute)
			)`,
			`CREATE TABLE IF NOT EXISTS bookings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				time_slot_id INTEGER NOT NULL REFERENCES time_slots(id),
				guest_id INTEGER NOT NULL REFERENCES users(id),
				booked_on TEXT NOT NULL,
				topic TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				UNIQUE (time_slot_id, booked_on)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_time_slots_calendar ON time_slots(calendar_id)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_guest ON bookings(guest_id)`,
		},
	},
}

// Migrate applies any pending schema migrations. Each migration runs inside
// its own transaction and is recorded in schema_migrations; a failed
// migration rolls back and leaves the version unrecorded.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	if _, err := pool.DB().ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			applied_at TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("failed to initialize schema_migrations: %w", err)
	}

	for _, step := range migrations {
		applied, err := migrationApplied(ctx, pool.DB(), step.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		err = pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range step.Statements {
				if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
					return fmt.Errorf("migration %s failed: %w", step.Version, execErr)
				}
			}
			_, recErr := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
				step.Version, step.Description, time.Now().UTC().Format(time.RFC3339))
			if recErr != nil {
				return fmt.Errorf("failed to record migration %s: %w", step.Version, recErr)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func migrationApplied(ctx context.Context, db *sql.DB, version string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", version, err)
	}
	return count > 0, nil
}
