package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/hackbook/internal/database"
	"github.com/yourusername/hackbook/internal/models"
)

// PostgresOddsRepository implements OddsRepository for PostgreSQL
type PostgresOddsRepository struct {
	db *database.DB
}

// NewPostgresOddsRepository creates a new odds repository
func NewPostgresOddsRepository(db *database.DB) OddsRepository {
	return &PostgresOddsRepository{db: db}
}

const upsertOddsQuery = `
	INSERT INTO odds_records (team_id, prize_id, implied_probability, american_odds, decimal_odds, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (team_id, prize_id) DO UPDATE SET
		implied_probability = EXCLUDED.implied_probability,
		american_odds = EXCLUDED.american_odds,
		decimal_odds = EXCLUDED.decimal_odds,
		updated_at = EXCLUDED.updated_at
`

// Upsert inserts or overwrites the odds record for a (team, prize) pair
func (o *PostgresOddsRepository) Upsert(ctx context.Context, record *models.OddsRecord) error {
	_, err := o.db.GetPool().Exec(ctx, upsertOddsQuery,
		record.TeamID, record.PrizeID, record.ImpliedProbability,
		record.AmericanOdds, record.DecimalOdds, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert odds record: %w", err)
	}

	return nil
}

// UpsertBatch upserts a batch of odds records, typically one prize's worth
func (o *PostgresOddsRepository) UpsertBatch(ctx context.Context, records []*models.OddsRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(upsertOddsQuery,
			record.TeamID, record.PrizeID, record.ImpliedProbability,
			record.AmericanOdds, record.DecimalOdds, record.UpdatedAt,
		)
	}

	results := o.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to batch upsert odds records: %w", err)
		}
	}

	return nil
}

// GetByPrizeID retrieves all odds records priced for a prize
func (o *PostgresOddsRepository) GetByPrizeID(ctx context.Context, prizeID uuid.UUID) ([]*models.OddsRecord, error) {
	query := `
		SELECT team_id, prize_id, implied_probability, american_odds, decimal_odds, updated_at
		FROM odds_records
		WHERE prize_id = $1
		ORDER BY implied_probability DESC
	`

	rows, err := o.db.GetPool().Query(ctx, query, prizeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds by prize: %w", err)
	}
	defer rows.Close()

	var records []*models.OddsRecord
	for rows.Next() {
		record := &models.OddsRecord{}
		err := rows.Scan(
			&record.TeamID, &record.PrizeID, &record.ImpliedProbability,
			&record.AmericanOdds, &record.DecimalOdds, &record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Get retrieves the odds record for one (team, prize) pair
func (o *PostgresOddsRepository) Get(ctx context.Context, teamID, prizeID uuid.UUID) (*models.OddsRecord, error) {
	query := `
		SELECT team_id, prize_id, implied_probability, american_odds, decimal_odds, updated_at
		FROM odds_records
		WHERE team_id = $1 AND prize_id = $2
	`

	record := &models.OddsRecord{}
	err := o.db.GetPool().QueryRow(ctx, query, teamID, prizeID).Scan(
		&record.TeamID, &record.PrizeID, &record.ImpliedProbability,
		&record.AmericanOdds, &record.DecimalOdds, &record.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get odds record: %w", err)
	}

	return record, nil
}
