package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/yourusername/hackbook/internal/models"
)

// In-memory implementations backing unit tests and local development without
// a database. MemorySettlementStore mirrors the PostgreSQL store's
// guarantees: the balance check-and-debit happens under one lock, so
// concurrent wagers serialize exactly as the conditional UPDATE does.

// MemoryOddsRepository is an in-memory OddsRepository
type MemoryOddsRepository struct {
	mu      sync.RWMutex
	records map[string]*models.OddsRecord
}

// NewMemoryOddsRepository creates an empty in-memory odds repository
func NewMemoryOddsRepository() *MemoryOddsRepository {
	return &MemoryOddsRepository{records: make(map[string]*models.OddsRecord)}
}

func oddsKey(teamID, prizeID uuid.UUID) string {
	return teamID.String() + ":" + prizeID.String()
}

// Upsert inserts or overwrites the record for a (team, prize) pair
func (m *MemoryOddsRepository) Upsert(_ context.Context, record *models.OddsRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *record
	m.records[oddsKey(record.TeamID, record.PrizeID)] = &clone
	return nil
}

// UpsertBatch upserts all records
func (m *MemoryOddsRepository) UpsertBatch(ctx context.Context, records []*models.OddsRecord) error {
	for _, record := range records {
		if err := m.Upsert(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// GetByPrizeID returns all records for a prize
func (m *MemoryOddsRepository) GetByPrizeID(_ context.Context, prizeID uuid.UUID) ([]*models.OddsRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.OddsRecord
	for _, record := range m.records {
		if record.PrizeID == prizeID {
			clone := *record
			out = append(out, &clone)
		}
	}
	return out, nil
}

// Get returns the record for one (team, prize) pair
func (m *MemoryOddsRepository) Get(_ context.Context, teamID, prizeID uuid.UUID) (*models.OddsRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[oddsKey(teamID, prizeID)]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

// Len returns the number of stored records
func (m *MemoryOddsRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// MemorySettlementStore is an in-memory SettlementStore with the same
// atomicity semantics as the PostgreSQL implementation.
type MemorySettlementStore struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64
	markets  map[uuid.UUID]*models.Market
	wagers   []*models.Wager

	// FailBeforeInsert simulates an infrastructure fault after the debit but
	// before the wager insert. The store must roll back: balance and pool
	// remain untouched and no wager row appears.
	FailBeforeInsert error
}

// NewMemorySettlementStore creates an empty in-memory settlement store
func NewMemorySettlementStore() *MemorySettlementStore {
	return &MemorySettlementStore{
		balances: make(map[uuid.UUID]int64),
		markets:  make(map[uuid.UUID]*models.Market),
	}
}

// SetBalance seeds a user balance
func (m *MemorySettlementStore) SetBalance(userID uuid.UUID, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = balance
}

// Balance returns a user's current balance
func (m *MemorySettlementStore) Balance(userID uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID]
}

// OpenMarket seeds an open market for the prize
func (m *MemorySettlementStore) OpenMarket(prizeID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markets[prizeID] = &models.Market{PrizeID: prizeID, Status: models.MarketStatusOpen}
}

// CloseMarket transitions the prize's market to closed
func (m *MemorySettlementStore) CloseMarket(prizeID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if market, ok := m.markets[prizeID]; ok {
		market.Status = models.MarketStatusClosed
	}
}

// Market returns the market for a prize
func (m *MemorySettlementStore) Market(prizeID uuid.UUID) (*models.Market, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	market, ok := m.markets[prizeID]
	if !ok {
		return nil, false
	}
	clone := *market
	return &clone, true
}

// Wagers returns all recorded wagers
func (m *MemorySettlementStore) Wagers() []*models.Wager {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Wager, len(m.wagers))
	copy(out, m.wagers)
	return out
}

// PlaceWager atomically debits, credits the pool and records the wager
func (m *MemorySettlementStore) PlaceWager(_ context.Context, wager *models.Wager) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	market, ok := m.markets[wager.PrizeID]
	if !ok {
		return 0, 0, models.ErrNotFound
	}
	if market.Status != models.MarketStatusOpen {
		return 0, 0, models.ErrMarketClosed
	}

	balance, ok := m.balances[wager.UserID]
	if !ok || balance < wager.Amount {
		return 0, 0, models.ErrInsufficientBalance
	}

	if m.FailBeforeInsert != nil {
		// Nothing was mutated yet, matching transactional rollback.
		return 0, 0, m.FailBeforeInsert
	}

	m.balances[wager.UserID] = balance - wager.Amount
	market.TotalPool += wager.Amount
	clone := *wager
	m.wagers = append(m.wagers, &clone)

	return m.balances[wager.UserID], market.TotalPool, nil
}
