// Package schema defines the relational schema for the timesheet store
// and applies it idempotently at startup.
//
// Dates are stored as ISO YYYY-MM-DD text: every date entering the
// store is normalized by the import pipeline first, and lexical order
// on the ISO form is date order, which the range queries rely on.
package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// statements are applied in order; each is idempotent.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id          BIGSERIAL PRIMARY KEY,
		year        INTEGER NOT NULL,
		season      TEXT NOT NULL,
		label       TEXT NOT NULL,
		start_date  TEXT,
		end_date    TEXT,
		is_active   BOOLEAN NOT NULL DEFAULT FALSE,
		source_file TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT sessions_year_season_key UNIQUE (year, season)
	)`,

	`CREATE TABLE IF NOT EXISTS category_families (
		id           BIGSERIAL PRIMARY KEY,
		name         TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		description  TEXT,
		color        TEXT,
		family_type  TEXT NOT NULL DEFAULT 'other',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS categories (
		id           BIGSERIAL PRIMARY KEY,
		session_id   BIGINT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		display_name TEXT NOT NULL,
		family_id    BIGINT REFERENCES category_families(id) ON DELETE SET NULL,
		position     INTEGER NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT categories_session_name_key UNIQUE (session_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS daily_records (
		id            BIGSERIAL PRIMARY KEY,
		session_id    BIGINT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		date          TEXT NOT NULL,
		day_of_week   TEXT,
		week_number   INTEGER,
		total_minutes INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT daily_records_session_date_key UNIQUE (session_id, date)
	)`,

	`CREATE TABLE IF NOT EXISTS observations (
		id              BIGSERIAL PRIMARY KEY,
		daily_record_id BIGINT NOT NULL REFERENCES daily_records(id) ON DELETE CASCADE,
		category_id     BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		minutes         INTEGER NOT NULL CHECK (minutes >= 0),
		source          TEXT NOT NULL DEFAULT 'import',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT observations_record_category_key UNIQUE (daily_record_id, category_id)
	)`,

	`CREATE TABLE IF NOT EXISTS text_entries (
		id              BIGSERIAL PRIMARY KEY,
		session_id      BIGINT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		date            TEXT NOT NULL,
		location        TEXT,
		notes           TEXT,
		study_materials TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_categories_session ON categories(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_family ON categories(family_id)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_records_session ON daily_records(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_observations_record ON observations(daily_record_id)`,
	`CREATE INDEX IF NOT EXISTS idx_observations_category ON observations(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_text_entries_session ON text_entries(session_id)`,
}

// Migrate applies the schema. Safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
