package db

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS repos (
	id           BIGINT PRIMARY KEY,
	name         TEXT NOT NULL,
	full_name    TEXT NOT NULL,
	owner_login  TEXT NOT NULL,
	owner_avatar TEXT,
	html_url     TEXT NOT NULL,
	description  TEXT,
	language     TEXT,
	topics       TEXT[],
	stargazers   INTEGER NOT NULL DEFAULT 0,
	forks        INTEGER NOT NULL DEFAULT 0,
	pushed_at    TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	idea_score   INTEGER NOT NULL DEFAULT 0,
	category     TEXT NOT NULL DEFAULT 'other',
	fetched_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_repos_category ON repos(category);
CREATE INDEX IF NOT EXISTS idx_repos_idea_score ON repos(idea_score DESC);
CREATE INDEX IF NOT EXISTS idx_repos_stargazers ON repos(stargazers DESC);
CREATE INDEX IF NOT EXISTS idx_repos_pushed_at ON repos(pushed_at ASC);
CREATE INDEX IF NOT EXISTS idx_repos_fetched_at ON repos(fetched_at);
`

// Migrate creates the repos table and its indexes when missing.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	safeLogInfo("Database migrations applied")
	return nil
}
