package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/hackbook/internal/database"
	"github.com/yourusername/hackbook/internal/models"
)

// PostgresWagerRepository implements WagerRepository for PostgreSQL
type PostgresWagerRepository struct {
	db *database.DB
}

// NewPostgresWagerRepository creates a new wager repository
func NewPostgresWagerRepository(db *database.DB) WagerRepository {
	return &PostgresWagerRepository{db: db}
}

const selectWagerColumns = `
	SELECT id, user_id, prize_id, team_id, amount, odds_at_bet, status, placed_at, settled_at, payout
	FROM wagers
`

// GetByID retrieves a wager by ID
func (w *PostgresWagerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Wager, error) {
	wager := &models.Wager{}
	err := w.db.GetPool().QueryRow(ctx, selectWagerColumns+` WHERE id = $1`, id).Scan(
		&wager.ID, &wager.UserID, &wager.PrizeID, &wager.TeamID, &wager.Amount,
		&wager.OddsAtBet, &wager.Status, &wager.PlacedAt, &wager.SettledAt, &wager.Payout,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}

	return wager, nil
}

// GetByUserID retrieves all wagers placed by a user, most recent first
func (w *PostgresWagerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Wager, error) {
	return w.queryWagers(ctx, selectWagerColumns+` WHERE user_id = $1 ORDER BY placed_at DESC`, userID)
}

// GetByPrizeID retrieves all wagers placed against a prize's market
func (w *PostgresWagerRepository) GetByPrizeID(ctx context.Context, prizeID uuid.UUID) ([]*models.Wager, error) {
	return w.queryWagers(ctx, selectWagerColumns+` WHERE prize_id = $1 ORDER BY placed_at DESC`, prizeID)
}

func (w *PostgresWagerRepository) queryWagers(ctx context.Context, query string, args ...interface{}) ([]*models.Wager, error) {
	rows, err := w.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wagers: %w", err)
	}
	defer rows.Close()

	var wagers []*models.Wager
	for rows.Next() {
		wager := &models.Wager{}
		err := rows.Scan(
			&wager.ID, &wager.UserID, &wager.PrizeID, &wager.TeamID, &wager.Amount,
			&wager.OddsAtBet, &wager.Status, &wager.PlacedAt, &wager.SettledAt, &wager.Payout,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, wager)
	}

	return wagers, rows.Err()
}
