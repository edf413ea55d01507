// Package helpers provides shared fixtures for integration tests running
// against a real PostgreSQL instance.
package helpers

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hackbook/internal/database"
	"github.com/yourusername/hackbook/internal/models"
	"github.com/yourusername/hackbook/internal/repository"
)

// QuietLogger returns a logger that swallows all output
func QuietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// SeedTeam inserts a team and returns it
func SeedTeam(t *testing.T, repos *repository.Repositories, hackathonID uuid.UUID, name string, rating float64, activity int, tags ...string) *models.Team {
	t.Helper()
	team := &models.Team{
		ID:            uuid.New(),
		HackathonID:   hackathonID,
		Name:          name,
		CategoryTags:  tags,
		BaseRating:    rating,
		ActivityCount: activity,
	}
	if err := repos.Team.Create(context.Background(), team); err != nil {
		t.Fatalf("failed to seed team %s: %v", name, err)
	}
	return team
}

// SeedPrize inserts a prize with an open market and returns it
func SeedPrize(t *testing.T, repos *repository.Repositories, hackathonID uuid.UUID, label string) *models.Prize {
	t.Helper()
	prize := &models.Prize{
		ID:            uuid.New(),
		HackathonID:   hackathonID,
		CategoryLabel: label,
		Amount:        5000,
	}
	if err := repos.Prize.Create(context.Background(), prize); err != nil {
		t.Fatalf("failed to seed prize %s: %v", label, err)
	}
	if err := repos.Market.Open(context.Background(), prize.ID); err != nil {
		t.Fatalf("failed to open market for prize %s: %v", label, err)
	}
	return prize
}

// SeedBalance upserts a user balance and returns the user ID
func SeedBalance(t *testing.T, db *database.DB, balance int64) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	_, err := db.GetPool().Exec(context.Background(), `
		INSERT INTO balances (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = $2, updated_at = NOW()
	`, userID, balance)
	if err != nil {
		t.Fatalf("failed to seed balance: %v", err)
	}
	return userID
}

// CleanTables truncates all hackbook tables between tests
func CleanTables(t *testing.T, db *database.DB) {
	t.Helper()
	_, err := db.GetPool().Exec(context.Background(),
		`TRUNCATE wagers, odds_records, markets, balances, prizes, teams`)
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}
