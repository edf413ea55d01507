package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/hackbook/internal/database"
	"github.com/yourusername/hackbook/internal/models"
)

// PostgresMarketRepository implements MarketRepository for PostgreSQL
type PostgresMarketRepository struct {
	db *database.DB
}

// NewPostgresMarketRepository creates a new market repository
func NewPostgresMarketRepository(db *database.DB) MarketRepository {
	return &PostgresMarketRepository{db: db}
}

// Open creates the prize's market if none exists yet and transitions it to
// open. Reopening a closed market keeps its accumulated pool.
func (m *PostgresMarketRepository) Open(ctx context.Context, prizeID uuid.UUID) error {
	query := `
		INSERT INTO markets (prize_id, status, total_pool)
		VALUES ($1, $2, 0)
		ON CONFLICT (prize_id) DO UPDATE SET status = $2, updated_at = NOW()
	`

	_, err := m.db.GetPool().Exec(ctx, query, prizeID, models.MarketStatusOpen)
	if err != nil {
		return fmt.Errorf("failed to open market: %w", err)
	}

	return nil
}

// GetByPrizeID retrieves the market for a prize
func (m *PostgresMarketRepository) GetByPrizeID(ctx context.Context, prizeID uuid.UUID) (*models.Market, error) {
	query := `
		SELECT prize_id, status, total_pool, created_at, updated_at
		FROM markets WHERE prize_id = $1
	`

	market := &models.Market{}
	err := m.db.GetPool().QueryRow(ctx, query, prizeID).Scan(
		&market.PrizeID, &market.Status, &market.TotalPool, &market.CreatedAt, &market.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get market: %w", err)
	}

	return market, nil
}

// SetStatus transitions a market's status
func (m *PostgresMarketRepository) SetStatus(ctx context.Context, prizeID uuid.UUID, status models.MarketStatus) error {
	query := `UPDATE markets SET status = $2, updated_at = NOW() WHERE prize_id = $1`

	commandTag, err := m.db.GetPool().Exec(ctx, query, prizeID, status)
	if err != nil {
		return fmt.Errorf("failed to set market status: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
