package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/hackbook/internal/database"
	"github.com/yourusername/hackbook/internal/models"
)

// PostgresBalanceRepository implements BalanceRepository for PostgreSQL
type PostgresBalanceRepository struct {
	db *database.DB
}

// NewPostgresBalanceRepository creates a new balance repository
func NewPostgresBalanceRepository(db *database.DB) BalanceRepository {
	return &PostgresBalanceRepository{db: db}
}

// Get retrieves a user's current balance
func (b *PostgresBalanceRepository) Get(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error) {
	query := `SELECT user_id, balance, updated_at FROM balances WHERE user_id = $1`

	balance := &models.UserBalance{}
	err := b.db.GetPool().QueryRow(ctx, query, userID).Scan(
		&balance.UserID, &balance.Balance, &balance.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance, nil
}

// Credit atomically increments a user's balance and returns the new value.
// Used by the external resolution process when paying out winning wagers.
func (b *PostgresBalanceRepository) Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	query := `
		UPDATE balances SET balance = balance + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING balance
	`

	var newBalance int64
	err := b.db.GetPool().QueryRow(ctx, query, userID, amount).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit balance: %w", err)
	}

	return newBalance, nil
}
