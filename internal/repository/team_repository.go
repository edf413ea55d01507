package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/hackbook/internal/database"
	"github.com/yourusername/hackbook/internal/models"
)

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// Create inserts a new team
func (t *PostgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, hackathon_id, name, category_tags, base_rating, activity_count, repo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := t.db.GetPool().Exec(ctx, query,
		team.ID, team.HackathonID, team.Name, team.CategoryTags,
		team.BaseRating, team.ActivityCount, team.RepoURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	return nil
}

// GetByID retrieves a team by ID
func (t *PostgresTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	query := `
		SELECT id, hackathon_id, name, category_tags, base_rating, activity_count, repo_url, created_at, updated_at
		FROM teams WHERE id = $1
	`

	team := &models.Team{}
	err := t.db.GetPool().QueryRow(ctx, query, id).Scan(
		&team.ID, &team.HackathonID, &team.Name, &team.CategoryTags,
		&team.BaseRating, &team.ActivityCount, &team.RepoURL, &team.CreatedAt, &team.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// GetByHackathonID retrieves all teams registered for a hackathon
func (t *PostgresTeamRepository) GetByHackathonID(ctx context.Context, hackathonID uuid.UUID) ([]*models.Team, error) {
	query := `
		SELECT id, hackathon_id, name, category_tags, base_rating, activity_count, repo_url, created_at, updated_at
		FROM teams
		WHERE hackathon_id = $1
		ORDER BY name ASC
	`

	rows, err := t.db.GetPool().Query(ctx, query, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams by hackathon: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		err := rows.Scan(
			&team.ID, &team.HackathonID, &team.Name, &team.CategoryTags,
			&team.BaseRating, &team.ActivityCount, &team.RepoURL, &team.CreatedAt, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// UpdateRating updates a team's externally derived quality rating
func (t *PostgresTeamRepository) UpdateRating(ctx context.Context, id uuid.UUID, baseRating float64) error {
	query := `UPDATE teams SET base_rating = $2, updated_at = NOW() WHERE id = $1`

	commandTag, err := t.db.GetPool().Exec(ctx, query, id, baseRating)
	if err != nil {
		return fmt.Errorf("failed to update team rating: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// UpdateActivity updates a team's recent repository activity count
func (t *PostgresTeamRepository) UpdateActivity(ctx context.Context, id uuid.UUID, activityCount int) error {
	query := `UPDATE teams SET activity_count = $2, updated_at = NOW() WHERE id = $1`

	commandTag, err := t.db.GetPool().Exec(ctx, query, id, activityCount)
	if err != nil {
		return fmt.Errorf("failed to update team activity: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
