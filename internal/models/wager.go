package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WagerStatus represents the status of a wager
type WagerStatus string

const (
	WagerStatusPending WagerStatus = "pending"
	WagerStatusWon     WagerStatus = "won"
	WagerStatusLost    WagerStatus = "lost"
)

// Wager represents a single bet: a fixed amount on a specific team winning a
// specific prize, locked at a specific odds value. The odds-at-placement are
// immutable; only the status transitions when the hackathon concludes.
type Wager struct {
	ID        uuid.UUID   `db:"id" json:"id" validate:"required,uuid4"`
	UserID    uuid.UUID   `db:"user_id" json:"user_id" validate:"required,uuid4"`
	PrizeID   uuid.UUID   `db:"prize_id" json:"prize_id" validate:"required,uuid4"`
	TeamID    uuid.UUID   `db:"team_id" json:"team_id" validate:"required,uuid4"`
	Amount    int64       `db:"amount" json:"amount" validate:"required,gt=0"`
	OddsAtBet float64     `db:"odds_at_bet" json:"odds_at_bet" validate:"required,gte=1"` // decimal odds the user saw
	Status    WagerStatus `db:"status" json:"status" validate:"required,oneof=pending won lost"`
	PlacedAt  time.Time   `db:"placed_at" json:"placed_at" validate:"required"`
	SettledAt *time.Time  `db:"settled_at" json:"settled_at"`
	Payout    *int64      `db:"payout" json:"payout"`
}

// IsResolved checks if the wager has been resolved
func (w *Wager) IsResolved() bool {
	return w.Status != WagerStatusPending && w.SettledAt != nil
}

// PotentialPayout returns stake plus winnings at the locked-in odds.
func (w *Wager) PotentialPayout() int64 {
	payout := decimal.NewFromInt(w.Amount).Mul(decimal.NewFromFloat(w.OddsAtBet))
	return payout.Round(0).IntPart()
}
