package postgres

import (
	"context"
	"fmt"
)

// Migrate creates the pgvector extension and all tables. Idempotent; safe to
// run on every startup. descriptorDim fixes the vector column width, so
// changing it requires a manual migration of existing rows.
func Migrate(ctx context.Context, pool *Pool, descriptorDim int) error {
	if _, err := pool.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS employees (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			location_id TEXT NOT NULL,
			shift_start TEXT NOT NULL DEFAULT '09:00',
			shift_end   TEXT NOT NULL DEFAULT '17:00'
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS descriptors (
			id          UUID PRIMARY KEY,
			employee_id TEXT NOT NULL,
			embedding   vector(%d) NOT NULL,
			quality     DOUBLE PRECISION NOT NULL DEFAULT 0,
			enrolled_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, descriptorDim),
		`CREATE INDEX IF NOT EXISTS idx_descriptors_employee ON descriptors (employee_id)`,
		`CREATE TABLE IF NOT EXISTS locations (
			id        TEXT PRIMARY KEY,
			latitude  DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			radius_m  DOUBLE PRECISION NOT NULL DEFAULT 0,
			wifi_ssid TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS location_policies (
			location_id            TEXT PRIMARY KEY,
			face_threshold         DOUBLE PRECISION NOT NULL,
			distance_normalization DOUBLE PRECISION NOT NULL,
			required_signals       TEXT NOT NULL,
			grace_minutes          INTEGER NOT NULL,
			min_enroll_quality     DOUBLE PRECISION NOT NULL,
			exclusive_enrollment   BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		// The (employee_id, day) primary key is the authoritative guard for
		// at-most-one attendance record per employee per day.
		`CREATE TABLE IF NOT EXISTS attendance_days (
			employee_id          TEXT NOT NULL,
			day                  DATE NOT NULL,
			state                TEXT NOT NULL,
			check_in_at          TIMESTAMPTZ,
			check_in_method      TEXT NOT NULL DEFAULT '',
			check_in_confidence  DOUBLE PRECISION NOT NULL DEFAULT 0,
			check_out_at         TIMESTAMPTZ,
			check_out_method     TEXT NOT NULL DEFAULT '',
			check_out_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
			late                 BOOLEAN NOT NULL DEFAULT FALSE,
			early_leave          BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (employee_id, day)
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
