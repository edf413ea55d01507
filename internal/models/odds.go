package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OddsRecord represents the priced relationship between one team and one
// prize. Exactly one record exists per (team, prize) pair; engine runs
// overwrite rather than duplicate.
type OddsRecord struct {
	TeamID             uuid.UUID `db:"team_id" json:"team_id" validate:"required,uuid4"`
	PrizeID            uuid.UUID `db:"prize_id" json:"prize_id" validate:"required,uuid4"`
	ImpliedProbability float64   `db:"implied_probability" json:"implied_probability" validate:"gte=0,lte=1"`
	AmericanOdds       int       `db:"american_odds" json:"american_odds"`
	DecimalOdds        float64   `db:"decimal_odds" json:"decimal_odds" validate:"gte=1"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// AmericanToDecimal converts American odds to decimal odds rounded to two
// decimal places. Positive odds are underdogs, negative odds favorites.
func AmericanToDecimal(american int) float64 {
	var dec decimal.Decimal
	if american >= 0 {
		dec = decimal.NewFromInt(1).Add(decimal.NewFromInt(int64(american)).Div(decimal.NewFromInt(100)))
	} else {
		dec = decimal.NewFromInt(1).Add(decimal.NewFromInt(100).Div(decimal.NewFromInt(int64(-american))))
	}
	f, _ := dec.Round(2).Float64()
	return f
}

// AmericanToImplied converts American odds to the implied win probability.
// Example: -150 -> 0.6, +150 -> 0.4.
func AmericanToImplied(american int) float64 {
	if american == 0 {
		return 0
	}
	abs := math.Abs(float64(american))
	if american > 0 {
		return 100.0 / (abs + 100.0)
	}
	return abs / (abs + 100.0)
}

// PotentialPayout returns stake plus winnings at this record's decimal odds.
func (o *OddsRecord) PotentialPayout(stake int64) int64 {
	payout := decimal.NewFromInt(stake).Mul(decimal.NewFromFloat(o.DecimalOdds))
	return payout.Round(0).IntPart()
}
