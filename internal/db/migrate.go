package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent, so the
// full list is replayed on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS learners (
		id           TEXT PRIMARY KEY,
		goal_summary TEXT NOT NULL DEFAULT '',
		revision     INTEGER NOT NULL DEFAULT 1,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS categories (
		learner_id     TEXT NOT NULL REFERENCES learners(id) ON DELETE CASCADE,
		key            TEXT NOT NULL,
		label          TEXT NOT NULL DEFAULT '',
		weight         REAL NOT NULL DEFAULT 0 CHECK(weight >= 0),
		current_rating REAL NOT NULL DEFAULT 0,
		target_rating  REAL,
		position       INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (learner_id, key)
	)`,

	`CREATE TABLE IF NOT EXISTS modules (
		learner_id        TEXT NOT NULL,
		category_key      TEXT NOT NULL,
		id                TEXT NOT NULL,
		title             TEXT NOT NULL DEFAULT '',
		estimated_minutes INTEGER NOT NULL DEFAULT 0 CHECK(estimated_minutes >= 0),
		prerequisites     TEXT NOT NULL DEFAULT '[]',
		objectives        TEXT NOT NULL DEFAULT '[]',
		position          INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (learner_id, category_key, id),
		FOREIGN KEY (learner_id, category_key) REFERENCES categories(learner_id, key) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS assessment_outcomes (
		learner_id    TEXT NOT NULL,
		category_key  TEXT NOT NULL,
		average_score REAL NOT NULL DEFAULT 0 CHECK(average_score >= 0 AND average_score <= 1),
		rating_delta  REAL NOT NULL DEFAULT 0,
		sample_count  INTEGER NOT NULL DEFAULT 0,
		updated_at    TEXT NOT NULL,
		PRIMARY KEY (learner_id, category_key),
		FOREIGN KEY (learner_id, category_key) REFERENCES categories(learner_id, key) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS milestone_history (
		id           TEXT PRIMARY KEY,
		learner_id   TEXT NOT NULL REFERENCES learners(id) ON DELETE CASCADE,
		category_key TEXT NOT NULL,
		title        TEXT NOT NULL DEFAULT '',
		completed_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_milestone_history_learner ON milestone_history(learner_id, completed_at)`,

	`CREATE TABLE IF NOT EXISTS deferrals (
		id           TEXT PRIMARY KEY,
		learner_id   TEXT NOT NULL REFERENCES learners(id) ON DELETE CASCADE,
		item_key     TEXT NOT NULL,
		day_shift    INTEGER NOT NULL,
		reason       TEXT NOT NULL DEFAULT '',
		requested_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_deferrals_learner_key ON deferrals(learner_id, item_key)`,

	`CREATE TABLE IF NOT EXISTS completions (
		id           TEXT PRIMARY KEY,
		learner_id   TEXT NOT NULL REFERENCES learners(id) ON DELETE CASCADE,
		item_key     TEXT NOT NULL,
		item_id      TEXT NOT NULL,
		kind         TEXT NOT NULL CHECK(kind IN ('lesson','quiz','milestone','refresher')),
		category_key TEXT NOT NULL,
		title        TEXT NOT NULL DEFAULT '',
		score        REAL,
		rating_delta REAL NOT NULL DEFAULT 0,
		notes        TEXT NOT NULL DEFAULT '',
		completed_at TEXT NOT NULL,
		UNIQUE (learner_id, item_key)
	)`,

	`CREATE TABLE IF NOT EXISTS rationale_entries (
		id               TEXT PRIMARY KEY,
		learner_id       TEXT NOT NULL REFERENCES learners(id) ON DELETE CASCADE,
		headline         TEXT NOT NULL,
		summary          TEXT NOT NULL DEFAULT '',
		adjustment_notes TEXT NOT NULL DEFAULT '[]',
		generated_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_rationale_learner ON rationale_entries(learner_id, id)`,
}
