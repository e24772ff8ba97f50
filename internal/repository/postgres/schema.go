package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS doctors (
		id              UUID PRIMARY KEY,
		email           TEXT NOT NULL UNIQUE,
		name            TEXT NOT NULL,
		specialty       TEXT NOT NULL,
		phone           TEXT NOT NULL,
		password_hash   TEXT NOT NULL,
		available_times TEXT[] NOT NULL DEFAULT '{}',
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS patients (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		phone         TEXT NOT NULL UNIQUE,
		name          TEXT NOT NULL,
		address       TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id               UUID PRIMARY KEY,
		doctor_id        UUID NOT NULL REFERENCES doctors (id) ON DELETE CASCADE,
		patient_id       UUID NOT NULL REFERENCES patients (id) ON DELETE CASCADE,
		appointment_time TIMESTAMPTZ NOT NULL,
		status           TEXT NOT NULL CHECK (status IN ('scheduled', 'completed')),
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL,
		CONSTRAINT appointments_doctor_slot_key UNIQUE (doctor_id, appointment_time)
	)`,
	`CREATE INDEX IF NOT EXISTS appointments_patient_time_idx ON appointments (patient_id, appointment_time)`,
}

// Migrate creates the tables and indexes when they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
