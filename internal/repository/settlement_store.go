package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yourusername/hackbook/internal/database"
	"github.com/yourusername/hackbook/internal/models"
)

// PostgresSettlementStore implements SettlementStore for PostgreSQL.
//
// The balance debit is a single conditional UPDATE guarded by
// `balance >= amount`, never a read-then-write from application code, so two
// concurrent wagers can never jointly overdraw an account: the second UPDATE
// sees the already-debited row and affects zero rows.
type PostgresSettlementStore struct {
	db *database.DB
}

// NewPostgresSettlementStore creates a new settlement store
func NewPostgresSettlementStore(db *database.DB) SettlementStore {
	return &PostgresSettlementStore{db: db}
}

// PlaceWager atomically debits the user balance, credits the market pool and
// inserts the wager row. A failure at any step rolls back the whole
// transaction; no partial state is ever visible.
func (s *PostgresSettlementStore) PlaceWager(ctx context.Context, wager *models.Wager) (int64, int64, error) {
	var newBalance, newPool int64

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		var status models.MarketStatus
		err := tx.QueryRow(ctx,
			`SELECT status FROM markets WHERE prize_id = $1 FOR UPDATE`,
			wager.PrizeID,
		).Scan(&status)
		if err == pgx.ErrNoRows {
			return models.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock market: %w", err)
		}
		if status != models.MarketStatusOpen {
			return models.ErrMarketClosed
		}

		err = tx.QueryRow(ctx,
			`UPDATE balances SET balance = balance - $2, updated_at = NOW()
			 WHERE user_id = $1 AND balance >= $2
			 RETURNING balance`,
			wager.UserID, wager.Amount,
		).Scan(&newBalance)
		if err == pgx.ErrNoRows {
			// Missing ledger row and short funds are indistinguishable to the
			// bettor: both mean the debit could not cover the stake.
			return models.ErrInsufficientBalance
		}
		if err != nil {
			return fmt.Errorf("failed to debit balance: %w", err)
		}

		err = tx.QueryRow(ctx,
			`UPDATE markets SET total_pool = total_pool + $2, updated_at = NOW()
			 WHERE prize_id = $1
			 RETURNING total_pool`,
			wager.PrizeID, wager.Amount,
		).Scan(&newPool)
		if err != nil {
			return fmt.Errorf("failed to credit market pool: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO wagers (id, user_id, prize_id, team_id, amount, odds_at_bet, status, placed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			wager.ID, wager.UserID, wager.PrizeID, wager.TeamID,
			wager.Amount, wager.OddsAtBet, wager.Status, wager.PlacedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert wager: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return newBalance, newPool, nil
}

// IsRetryable reports whether a settlement error is a transient transaction
// conflict worth retrying: serialization failures, deadlocks and lock
// timeouts.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}
