//go:build integration

package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/hackbook/internal/config"
	"github.com/yourusername/hackbook/internal/database"
	"github.com/yourusername/hackbook/internal/models"
	"github.com/yourusername/hackbook/internal/odds"
	"github.com/yourusername/hackbook/internal/repository"
	"github.com/yourusername/hackbook/internal/settlement"
	"github.com/yourusername/hackbook/test/helpers"
)

func setup(t *testing.T) (*database.DB, *repository.Repositories) {
	t.Helper()
	db := database.SetupTestDB(t)
	t.Cleanup(func() {
		helpers.CleanTables(t, db)
		database.TeardownTestDB(t, db)
	})
	helpers.CleanTables(t, db)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)
	return db, repos
}

func testOddsConfig() config.OddsConfig {
	return config.OddsConfig{
		Vigorish:         0.05,
		ActivityBonusMax: 15,
		AlignmentBonus:   20,
		JitterSpan:       5,
		AmericanDivisor:  6,
		AmericanClampMin: -120,
		AmericanClampMax: 150,
		CacheTTLSeconds:  10,
	}
}

func TestPriceThenWagerFlow(t *testing.T) {
	db, repos := setup(t)
	ctx := context.Background()

	hackathonID := uuid.New()
	strong := helpers.SeedTeam(t, repos, hackathonID, "rocket", 80, 20, "ai")
	helpers.SeedTeam(t, repos, hackathonID, "tortoise", 40, 0)
	prize := helpers.SeedPrize(t, repos, hackathonID, "Best AI Project")

	engine := odds.NewEngine(
		testOddsConfig(),
		repos.Odds, repos.Team, repos.Prize,
		odds.NewJitter(42, 5),
		helpers.QuietLogger(),
	)

	result, err := engine.PriceHackathon(ctx, hackathonID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PrizesPriced)
	assert.Equal(t, 2, result.RecordsComputed)

	records, err := repos.Odds.GetByPrizeID(ctx, prize.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	total := 0.0
	for _, r := range records {
		total += r.ImpliedProbability
		assert.GreaterOrEqual(t, r.AmericanOdds, -120)
		assert.LessOrEqual(t, r.AmericanOdds, 150)
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	userID := helpers.SeedBalance(t, db, 1000)
	svc := settlement.NewService(repos.Settlement, repos.Odds, nil, 3, 10*time.Millisecond, 5*time.Second, helpers.QuietLogger())

	wagerResult, err := svc.PlaceWager(ctx, settlement.Request{
		UserID:    userID,
		PrizeID:   prize.ID,
		TeamID:    strong.ID,
		Amount:    250,
		OddsAtBet: 1.5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(750), wagerResult.NewBalance)
	assert.NotNil(t, wagerResult.LiveOdds)

	market, err := repos.Market.GetByPrizeID(ctx, prize.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), market.TotalPool)

	wagers, err := repos.Wager.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, wagers, 1)
	assert.Equal(t, models.WagerStatusPending, wagers[0].Status)
	assert.Equal(t, 1.5, wagers[0].OddsAtBet)

	// A payout credit lands on top of the debited balance.
	credited, err := repos.Balance.Credit(ctx, userID, 375)
	require.NoError(t, err)
	assert.Equal(t, int64(1125), credited)

	_, err = repos.Balance.Credit(ctx, uuid.New(), 100)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMarketOpenCreatesMissingRow(t *testing.T) {
	db, repos := setup(t)
	ctx := context.Background()

	hackathonID := uuid.New()
	team := helpers.SeedTeam(t, repos, hackathonID, "latecomer", 55, 3)
	prize := &models.Prize{
		ID:            uuid.New(),
		HackathonID:   hackathonID,
		CategoryLabel: "Best Hardware Hack",
		Amount:        5000,
	}
	require.NoError(t, repos.Prize.Create(ctx, prize))

	_, err := repos.Market.GetByPrizeID(ctx, prize.ID)
	require.ErrorIs(t, err, models.ErrNotFound, "prize creation alone makes no market row")

	require.NoError(t, repos.Market.Open(ctx, prize.ID))
	market, err := repos.Market.GetByPrizeID(ctx, prize.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MarketStatusOpen, market.Status)

	require.NoError(t, repos.Market.SetStatus(ctx, prize.ID, models.MarketStatusClosed))
	require.NoError(t, repos.Market.Open(ctx, prize.ID))
	market, err = repos.Market.GetByPrizeID(ctx, prize.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MarketStatusOpen, market.Status, "reopening a closed market")

	userID := helpers.SeedBalance(t, db, 500)
	svc := settlement.NewService(repos.Settlement, nil, nil, 3, 10*time.Millisecond, 5*time.Second, helpers.QuietLogger())

	_, err = svc.PlaceWager(ctx, settlement.Request{
		UserID:    userID,
		PrizeID:   prize.ID,
		TeamID:    team.ID,
		Amount:    100,
		OddsAtBet: 2.0,
	})
	require.NoError(t, err)
}

func TestClosedMarketRejectsWagers(t *testing.T) {
	db, repos := setup(t)
	ctx := context.Background()

	hackathonID := uuid.New()
	team := helpers.SeedTeam(t, repos, hackathonID, "solo", 50, 0)
	prize := helpers.SeedPrize(t, repos, hackathonID, "Best DeFi Project")
	require.NoError(t, repos.Market.SetStatus(ctx, prize.ID, models.MarketStatusClosed))

	userID := helpers.SeedBalance(t, db, 1000)
	svc := settlement.NewService(repos.Settlement, nil, nil, 3, 10*time.Millisecond, 5*time.Second, helpers.QuietLogger())

	_, err := svc.PlaceWager(ctx, settlement.Request{
		UserID:  userID,
		PrizeID: prize.ID,
		TeamID:  team.ID,
		Amount:  100,
	})
	assert.ErrorIs(t, err, models.ErrMarketClosed)

	balance, err := repos.Balance.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance.Balance)
}

func TestConcurrentWagersSerializeOnBalance(t *testing.T) {
	db, repos := setup(t)
	ctx := context.Background()

	hackathonID := uuid.New()
	team := helpers.SeedTeam(t, repos, hackathonID, "popular", 60, 5)
	prize := helpers.SeedPrize(t, repos, hackathonID, "Overall Winner")

	userID := helpers.SeedBalance(t, db, 1000)
	svc := settlement.NewService(repos.Settlement, nil, nil, 3, 10*time.Millisecond, 5*time.Second, helpers.QuietLogger())

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceWager(ctx, settlement.Request{
				UserID:    userID,
				PrizeID:   prize.ID,
				TeamID:    team.ID,
				Amount:    600,
				OddsAtBet: 2.0,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, insufficient := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)

	balance, err := repos.Balance.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(400), balance.Balance)

	market, err := repos.Market.GetByPrizeID(ctx, prize.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(600), market.TotalPool)
}

func TestRepricingIsIdempotentInPostgres(t *testing.T) {
	_, repos := setup(t)
	ctx := context.Background()

	hackathonID := uuid.New()
	helpers.SeedTeam(t, repos, hackathonID, "alpha", 70, 10, "ai")
	helpers.SeedTeam(t, repos, hackathonID, "beta", 50, 2)
	prize := helpers.SeedPrize(t, repos, hackathonID, "Best AI Project")

	engine := odds.NewEngine(
		testOddsConfig(),
		repos.Odds, repos.Team, repos.Prize,
		odds.NewJitter(7, 5),
		helpers.QuietLogger(),
	)

	_, err := engine.PriceHackathon(ctx, hackathonID)
	require.NoError(t, err)
	_, err = engine.PriceHackathon(ctx, hackathonID)
	require.NoError(t, err)

	records, err := repos.Odds.GetByPrizeID(ctx, prize.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2, "upsert overwrites, never duplicates")
}
