package database

import (
	"context"
	"fmt"
)

// schemaStatements creates the core tables. Statements are idempotent so the
// bootstrap can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY,
		hackathon_id UUID NOT NULL,
		name TEXT NOT NULL,
		category_tags TEXT[] NOT NULL DEFAULT '{}',
		base_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		activity_count INTEGER NOT NULL DEFAULT 0,
		repo_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS prizes (
		id UUID PRIMARY KEY,
		hackathon_id UUID NOT NULL,
		category_label TEXT NOT NULL,
		amount BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS markets (
		prize_id UUID PRIMARY KEY REFERENCES prizes(id),
		status TEXT NOT NULL DEFAULT 'open',
		total_pool BIGINT NOT NULL DEFAULT 0 CHECK (total_pool >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS balances (
		user_id UUID PRIMARY KEY,
		balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS odds_records (
		team_id UUID NOT NULL REFERENCES teams(id),
		prize_id UUID NOT NULL REFERENCES prizes(id),
		implied_probability DOUBLE PRECISION NOT NULL,
		american_odds INTEGER NOT NULL,
		decimal_odds DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (team_id, prize_id)
	)`,
	`CREATE TABLE IF NOT EXISTS wagers (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		prize_id UUID NOT NULL REFERENCES prizes(id),
		team_id UUID NOT NULL REFERENCES teams(id),
		amount BIGINT NOT NULL CHECK (amount > 0),
		odds_at_bet DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		placed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		settled_at TIMESTAMPTZ,
		payout BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wagers_user ON wagers(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_wagers_prize ON wagers(prize_id)`,
	`CREATE INDEX IF NOT EXISTS idx_teams_hackathon ON teams(hackathon_id)`,
	`CREATE INDEX IF NOT EXISTS idx_prizes_hackathon ON prizes(hackathon_id)`,
}

// InitSchema creates the database schema if it does not exist
func (db *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
