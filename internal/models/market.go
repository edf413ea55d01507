package models

import (
	"time"

	"github.com/google/uuid"
)

// MarketStatus represents whether a market accepts wagers
type MarketStatus string

const (
	MarketStatusOpen     MarketStatus = "open"
	MarketStatusClosed   MarketStatus = "closed"
	MarketStatusResolved MarketStatus = "resolved"
)

// Market represents the betting market scoped to a single prize. The total
// pool is the sum of all wager amounts placed against it; it is incremented
// only inside the settlement transaction.
type Market struct {
	PrizeID   uuid.UUID    `db:"prize_id" json:"prize_id" validate:"required,uuid4"`
	Status    MarketStatus `db:"status" json:"status" validate:"required,oneof=open closed resolved"`
	TotalPool int64        `db:"total_pool" json:"total_pool" validate:"gte=0"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// IsOpen checks if the market accepts wagers
func (m *Market) IsOpen() bool {
	return m.Status == MarketStatusOpen
}

// UserBalance represents the virtual-currency ledger entry for a user. The
// ledger is owned by the profile subsystem; settlement only reads it and
// atomically decrements it.
type UserBalance struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id" validate:"required,uuid4"`
	Balance   int64     `db:"balance" json:"balance" validate:"gte=0"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
