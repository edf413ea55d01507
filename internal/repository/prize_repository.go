package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/hackbook/internal/database"
	"github.com/yourusername/hackbook/internal/models"
)

// PostgresPrizeRepository implements PrizeRepository for PostgreSQL
type PostgresPrizeRepository struct {
	db *database.DB
}

// NewPostgresPrizeRepository creates a new prize repository
func NewPostgresPrizeRepository(db *database.DB) PrizeRepository {
	return &PostgresPrizeRepository{db: db}
}

// Create inserts a new prize
func (p *PostgresPrizeRepository) Create(ctx context.Context, prize *models.Prize) error {
	query := `
		INSERT INTO prizes (id, hackathon_id, category_label, amount)
		VALUES ($1, $2, $3, $4)
	`

	_, err := p.db.GetPool().Exec(ctx, query,
		prize.ID, prize.HackathonID, prize.CategoryLabel, prize.Amount,
	)
	if err != nil {
		return fmt.Errorf("failed to create prize: %w", err)
	}

	return nil
}

// GetByID retrieves a prize by ID
func (p *PostgresPrizeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Prize, error) {
	query := `
		SELECT id, hackathon_id, category_label, amount, created_at
		FROM prizes WHERE id = $1
	`

	prize := &models.Prize{}
	err := p.db.GetPool().QueryRow(ctx, query, id).Scan(
		&prize.ID, &prize.HackathonID, &prize.CategoryLabel, &prize.Amount, &prize.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prize: %w", err)
	}

	return prize, nil
}

// GetByHackathonID retrieves all prizes offered by a hackathon
func (p *PostgresPrizeRepository) GetByHackathonID(ctx context.Context, hackathonID uuid.UUID) ([]*models.Prize, error) {
	query := `
		SELECT id, hackathon_id, category_label, amount, created_at
		FROM prizes
		WHERE hackathon_id = $1
		ORDER BY created_at ASC
	`

	rows, err := p.db.GetPool().Query(ctx, query, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query prizes by hackathon: %w", err)
	}
	defer rows.Close()

	var prizes []*models.Prize
	for rows.Next() {
		prize := &models.Prize{}
		err := rows.Scan(&prize.ID, &prize.HackathonID, &prize.CategoryLabel, &prize.Amount, &prize.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prize: %w", err)
		}
		prizes = append(prizes, prize)
	}

	return prizes, rows.Err()
}
