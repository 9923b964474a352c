package storage

import (
	"database/sql"
	"fmt"
)

// migrations are applied in order. PRAGMA user_version records how many have
// run, so an existing database upgrades in place on open.
var migrations = []string{
	`
CREATE TABLE records (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	amount       TEXT NOT NULL,
	category     TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	occurred_on  TEXT NOT NULL,
	is_recurring INTEGER NOT NULL DEFAULT 0,
	frequency    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX idx_records_occurred_on ON records(occurred_on);

CREATE TABLE subscriptions (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	amount        TEXT NOT NULL,
	frequency     TEXT NOT NULL,
	start_date    TEXT NOT NULL,
	end_date      TEXT,
	category      TEXT NOT NULL DEFAULT '',
	is_active     INTEGER NOT NULL DEFAULT 1,
	auto_generate INTEGER NOT NULL DEFAULT 1,
	last_billed   TEXT
);

CREATE TABLE assets (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	category      TEXT NOT NULL DEFAULT '',
	current_value TEXT NOT NULL
);

CREATE TABLE liabilities (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	category        TEXT NOT NULL DEFAULT '',
	current_balance TEXT NOT NULL,
	interest_rate   REAL,
	minimum_payment TEXT
);

CREATE TABLE snapshots (
	date                TEXT PRIMARY KEY,
	total_assets        TEXT NOT NULL,
	total_liabilities   TEXT NOT NULL,
	net_worth           TEXT NOT NULL,
	asset_breakdown     TEXT NOT NULL DEFAULT '{}',
	liability_breakdown TEXT NOT NULL DEFAULT '{}'
);
`,
}

// migrate brings the schema up to the current version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this build supports (%d)", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}
	return nil
}
