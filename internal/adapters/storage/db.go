package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// migrations holds one schema script per version, applied in order. The
// current version lives in PRAGMA user_version; MigrateDB applies every
// script past it inside a transaction.
var migrations = []string{
	// v1: initial schema
	`
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS team (
		id TEXT PRIMARY KEY,
		team_name TEXT NOT NULL,
		organization TEXT NOT NULL,
		city TEXT NOT NULL,
		tier TEXT NOT NULL,
		gender TEXT NOT NULL,
		coach_name TEXT NOT NULL,
		coach_email TEXT NOT NULL,
		coach_phone TEXT NOT NULL,
		emergency_name TEXT NOT NULL,
		emergency_phone TEXT NOT NULL,
		emergency_relationship TEXT NOT NULL,
		registration_fee INTEGER NOT NULL,
		payment_method TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		registration_status TEXT NOT NULL,
		special_requirements TEXT NOT NULL DEFAULT '',
		comments TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_team_active_coach_name
		ON team (coach_email, team_name)
		WHERE registration_status IN ('pending', 'approved', 'waitlisted');

	CREATE TABLE IF NOT EXISTS team_player (
		team_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		date_of_birth TEXT NOT NULL,
		photo_path TEXT NOT NULL DEFAULT '',
		photo_original_name TEXT NOT NULL DEFAULT '',
		age_at_registration INTEGER NOT NULL,
		PRIMARY KEY (team_id, position),
		FOREIGN KEY (team_id) REFERENCES team(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS sponsor (
		id TEXT PRIMARY KEY,
		company_name TEXT NOT NULL,
		contact_name TEXT NOT NULL,
		contact_email TEXT NOT NULL,
		contact_phone TEXT NOT NULL,
		level TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		website TEXT NOT NULL DEFAULT '',
		comments TEXT NOT NULL DEFAULT '',
		payment_method TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_sponsor_active_contact_company
		ON sponsor (contact_email, company_name)
		WHERE status IN ('pending', 'approved');

	CREATE TABLE IF NOT EXISTS contact_message (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT,
		created_at TEXT NOT NULL,
		external_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);
	`,
}

// MigrateDB brings the database schema up to the current version.
// PRE: db is a valid connection
// POST: WAL mode and foreign keys enabled, all pending migrations applied
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this binary supports (%d)", version, len(migrations))
	}

	for v := version; v < len(migrations); v++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", v+1, err)
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", v+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("set schema version %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", v+1, err)
		}
		slog.Info("db_migrated", "version", v+1)
	}

	return nil
}

// LatestSchemaVersion returns the schema version this binary migrates to.
func LatestSchemaVersion() int {
	return len(migrations)
}

// IsUniqueViolation reports whether err is a SQLite unique-constraint
// failure. The pure-Go driver exposes constraint errors only through the
// message text.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed: UNIQUE")
}
