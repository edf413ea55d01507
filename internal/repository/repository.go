package repository

import (
	"fmt"

	"github.com/yourusername/hackbook/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Team       TeamRepository
	Prize      PrizeRepository
	Market     MarketRepository
	Odds       OddsRepository
	Balance    BalanceRepository
	Wager      WagerRepository
	Settlement SettlementStore
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Team:       NewPostgresTeamRepository(db),
		Prize:      NewPostgresPrizeRepository(db),
		Market:     NewPostgresMarketRepository(db),
		Odds:       NewPostgresOddsRepository(db),
		Balance:    NewPostgresBalanceRepository(db),
		Wager:      NewPostgresWagerRepository(db),
		Settlement: NewPostgresSettlementStore(db),
	}, nil
}
