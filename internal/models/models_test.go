package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		american int
		want     float64
	}{
		{150, 2.5},
		{100, 2.0},
		{25, 1.25},
		{-100, 2.0},
		{-120, 1.83},
		{-150, 1.67},
		{0, 1.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AmericanToDecimal(tt.american), "american %d", tt.american)
	}
}

func TestAmericanToImplied(t *testing.T) {
	assert.InDelta(t, 0.6, AmericanToImplied(-150), 1e-9)
	assert.InDelta(t, 0.4, AmericanToImplied(150), 1e-9)
	assert.InDelta(t, 0.5, AmericanToImplied(-100), 1e-9)
	assert.InDelta(t, 0.5, AmericanToImplied(100), 1e-9)
	assert.Zero(t, AmericanToImplied(0))
}

func TestOddsRecordPotentialPayout(t *testing.T) {
	record := &OddsRecord{DecimalOdds: 2.5}
	assert.Equal(t, int64(250), record.PotentialPayout(100))

	record.DecimalOdds = 1.83
	assert.Equal(t, int64(183), record.PotentialPayout(100))
}

func TestWagerPotentialPayout(t *testing.T) {
	wager := &Wager{Amount: 200, OddsAtBet: 3.25}
	assert.Equal(t, int64(650), wager.PotentialPayout())
}

func TestWagerIsResolved(t *testing.T) {
	wager := &Wager{Status: WagerStatusPending}
	assert.False(t, wager.IsResolved())

	now := time.Now()
	wager.Status = WagerStatusWon
	assert.False(t, wager.IsResolved(), "a resolved status still needs a settlement time")

	wager.SettledAt = &now
	assert.True(t, wager.IsResolved())
}

func TestTeamMatchesCategory(t *testing.T) {
	team := &Team{
		Name:         "Quantum Llamas",
		CategoryTags: []string{"DeFi", "payments"},
	}

	assert.True(t, team.MatchesCategory("Best DeFi Project"))
	assert.True(t, team.MatchesCategory("defi"))
	assert.True(t, team.MatchesCategory("Payments Track"))
	assert.False(t, team.MatchesCategory("Best Gaming Project"))
	assert.False(t, team.MatchesCategory(""))

	// Name matching kicks in when no tag matches.
	assert.True(t, team.MatchesCategory("llamas"))
}

func TestPrizeIsOverall(t *testing.T) {
	assert.True(t, (&Prize{CategoryLabel: "Overall Winner"}).IsOverall())
	assert.True(t, (&Prize{CategoryLabel: "Grand Prize"}).IsOverall())
	assert.True(t, (&Prize{CategoryLabel: "overall"}).IsOverall())
	assert.False(t, (&Prize{CategoryLabel: "Best AI Project"}).IsOverall())
}

func TestMarketIsOpen(t *testing.T) {
	assert.True(t, (&Market{Status: MarketStatusOpen}).IsOpen())
	assert.False(t, (&Market{Status: MarketStatusClosed}).IsOpen())
	assert.False(t, (&Market{Status: MarketStatusResolved}).IsOpen())
}
