package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/hackbook/internal/models"
)

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetByHackathonID(ctx context.Context, hackathonID uuid.UUID) ([]*models.Team, error)
	UpdateRating(ctx context.Context, id uuid.UUID, baseRating float64) error
	UpdateActivity(ctx context.Context, id uuid.UUID, activityCount int) error
}

// PrizeRepository defines the interface for prize data access
type PrizeRepository interface {
	Create(ctx context.Context, prize *models.Prize) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Prize, error)
	GetByHackathonID(ctx context.Context, hackathonID uuid.UUID) ([]*models.Prize, error)
}

// MarketRepository defines the interface for market data access. Open is an
// upsert: a prize gets its market row on first open, not on creation.
type MarketRepository interface {
	Open(ctx context.Context, prizeID uuid.UUID) error
	GetByPrizeID(ctx context.Context, prizeID uuid.UUID) (*models.Market, error)
	SetStatus(ctx context.Context, prizeID uuid.UUID, status models.MarketStatus) error
}

// OddsRepository defines the interface for odds record data access. Upsert is
// keyed by (team, prize): a second engine run overwrites, never duplicates.
type OddsRepository interface {
	Upsert(ctx context.Context, record *models.OddsRecord) error
	UpsertBatch(ctx context.Context, records []*models.OddsRecord) error
	GetByPrizeID(ctx context.Context, prizeID uuid.UUID) ([]*models.OddsRecord, error)
	Get(ctx context.Context, teamID, prizeID uuid.UUID) (*models.OddsRecord, error)
}

// BalanceRepository defines the interface for the user balance ledger. The
// ledger's lifecycle is owned elsewhere; settlement only reads and credits it.
type BalanceRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error)
	Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
}

// WagerRepository defines read access to placed wagers
type WagerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Wager, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Wager, error)
	GetByPrizeID(ctx context.Context, prizeID uuid.UUID) ([]*models.Wager, error)
}

// SettlementStore performs the atomic wager placement: debit the user
// balance, credit the market pool and insert the wager row in one
// transaction. Either all three happen or none do.
//
// Errors: models.ErrMarketClosed if the market is not open,
// models.ErrInsufficientBalance if the conditional debit fails,
// models.ErrNotFound if the market does not exist. Transient transaction
// conflicts satisfy IsRetryable and are retried by the settlement service.
type SettlementStore interface {
	PlaceWager(ctx context.Context, wager *models.Wager) (newBalance, newPool int64, err error)
}
