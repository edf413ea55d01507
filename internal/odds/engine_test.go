package odds

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/hackbook/internal/config"
	"github.com/yourusername/hackbook/internal/models"
	"github.com/yourusername/hackbook/internal/repository"
)

type fakeTeamRepo struct{ teams []*models.Team }

func (f *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error { return nil }
func (f *fakeTeamRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	for _, t := range f.teams {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, models.ErrNotFound
}
func (f *fakeTeamRepo) GetByHackathonID(ctx context.Context, hackathonID uuid.UUID) ([]*models.Team, error) {
	return f.teams, nil
}
func (f *fakeTeamRepo) UpdateRating(ctx context.Context, id uuid.UUID, baseRating float64) error {
	return nil
}
func (f *fakeTeamRepo) UpdateActivity(ctx context.Context, id uuid.UUID, activityCount int) error {
	return nil
}

type fakePrizeRepo struct{ prizes []*models.Prize }

func (f *fakePrizeRepo) Create(ctx context.Context, prize *models.Prize) error { return nil }
func (f *fakePrizeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Prize, error) {
	for _, p := range f.prizes {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, models.ErrNotFound
}
func (f *fakePrizeRepo) GetByHackathonID(ctx context.Context, hackathonID uuid.UUID) ([]*models.Prize, error) {
	return f.prizes, nil
}

func testOddsConfig() config.OddsConfig {
	return config.OddsConfig{
		Vigorish:         0.05,
		ActivityBonusMax: 15.0,
		AlignmentBonus:   20.0,
		JitterSpan:       5.0,
		AmericanDivisor:  6.0,
		AmericanClampMin: -120,
		AmericanClampMax: 150,
		CacheTTLSeconds:  10,
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestEngine(t *testing.T, jitter JitterFunc, teams []*models.Team, prizes []*models.Prize) (*Engine, *repository.MemoryOddsRepository) {
	t.Helper()
	oddsRepo := repository.NewMemoryOddsRepository()
	engine := NewEngine(
		testOddsConfig(),
		oddsRepo,
		&fakeTeamRepo{teams: teams},
		&fakePrizeRepo{prizes: prizes},
		jitter,
		testLogger(),
	)
	return engine, oddsRepo
}

func makeTeam(hackathonID uuid.UUID, name string, rating float64, activity int, tags ...string) *models.Team {
	return &models.Team{
		ID:            uuid.New(),
		HackathonID:   hackathonID,
		Name:          name,
		CategoryTags:  tags,
		BaseRating:    rating,
		ActivityCount: activity,
	}
}

func makePrize(hackathonID uuid.UUID, label string) *models.Prize {
	return &models.Prize{
		ID:            uuid.New(),
		HackathonID:   hackathonID,
		CategoryLabel: label,
		Amount:        5000,
	}
}

func TestComputePricingVigorishContract(t *testing.T) {
	hackathonID := uuid.New()
	teams := []*models.Team{
		makeTeam(hackathonID, "alpha", 80, 20, "ai"),
		makeTeam(hackathonID, "beta", 55, 5, "defi"),
		makeTeam(hackathonID, "gamma", 30, 0),
	}
	prize := makePrize(hackathonID, "Best AI Project")
	engine, _ := newTestEngine(t, NoJitter(), teams, []*models.Prize{prize})

	pr, err := engine.computePricing(prize, teams)
	require.NoError(t, err)

	rawSum, vigSum, finalSum := 0.0, 0.0, 0.0
	for i := range teams {
		rawSum += pr.rawProbs[i]
		vigSum += pr.vigProbs[i]
		finalSum += pr.finalProbs[i]
	}

	assert.InDelta(t, 1.0, rawSum, 1e-9)
	assert.InDelta(t, 0.95, vigSum, 1e-9, "probabilities scaled by (1 - vigorish) before renormalization")
	assert.InDelta(t, 1.0, finalSum, 1e-9, "final probabilities renormalize to exactly one")
}

func TestAlignmentAndActivityFavorTheStrongerTeam(t *testing.T) {
	hackathonID := uuid.New()
	strong := makeTeam(hackathonID, "rocket", 80, 20, "ai")
	weak := makeTeam(hackathonID, "tortoise", 40, 0, "gaming")
	teams := []*models.Team{strong, weak}
	prize := makePrize(hackathonID, "Best AI Project")
	engine, _ := newTestEngine(t, NoJitter(), teams, []*models.Prize{prize})

	records, err := engine.PriceCategory(context.Background(), prize, teams)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Greater(t, records[0].ImpliedProbability, records[1].ImpliedProbability)
	assert.Less(t, records[0].AmericanOdds, records[1].AmericanOdds)
	assert.Less(t, records[0].DecimalOdds, records[1].DecimalOdds)
	assert.Negative(t, records[0].AmericanOdds, "heavy favorite prices negative")
	assert.Positive(t, records[1].AmericanOdds, "underdog prices positive")
}

func TestOverallPrizeGetsNoAlignmentBonus(t *testing.T) {
	hackathonID := uuid.New()
	tagged := makeTeam(hackathonID, "tagged", 50, 0, "overall")
	untagged := makeTeam(hackathonID, "untagged", 50, 0)
	teams := []*models.Team{tagged, untagged}
	prize := makePrize(hackathonID, "Overall Winner")
	engine, _ := newTestEngine(t, NoJitter(), teams, []*models.Prize{prize})

	records, err := engine.PriceCategory(context.Background(), prize, teams)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.InDelta(t, records[0].ImpliedProbability, records[1].ImpliedProbability, 1e-9,
		"identical teams must price identically on the overall prize regardless of tags")
}

func TestDegeneratePrizeSkippedBatchContinues(t *testing.T) {
	hackathonID := uuid.New()
	// Negative ratings: the aligned prize is rescued by the alignment bonus,
	// the overall prize sums negative and must be skipped.
	teams := []*models.Team{
		makeTeam(hackathonID, "red", -10, 0, "ai"),
		makeTeam(hackathonID, "blue", -10, 0, "ai"),
	}
	aligned := makePrize(hackathonID, "Best AI Project")
	overall := makePrize(hackathonID, "Overall Winner")
	engine, oddsRepo := newTestEngine(t, NoJitter(), teams, []*models.Prize{aligned, overall})

	result, err := engine.PriceHackathon(context.Background(), hackathonID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.PrizesPriced)
	assert.Equal(t, 1, result.PrizesSkipped)
	assert.Equal(t, 2, result.RecordsComputed)
	assert.Equal(t, 2, oddsRepo.Len())

	_, err = engine.PriceCategory(context.Background(), overall, teams)
	assert.ErrorIs(t, err, models.ErrOddsComputationSkipped)
}

func TestPriceCategoryZeroTeamsIsNoOp(t *testing.T) {
	hackathonID := uuid.New()
	prize := makePrize(hackathonID, "Best DeFi Project")
	engine, oddsRepo := newTestEngine(t, NoJitter(), nil, []*models.Prize{prize})

	records, err := engine.PriceCategory(context.Background(), prize, nil)
	require.NoError(t, err)
	assert.Nil(t, records)
	assert.Equal(t, 0, oddsRepo.Len())
}

func TestRepricingOverwritesInsteadOfDuplicating(t *testing.T) {
	hackathonID := uuid.New()
	teams := []*models.Team{
		makeTeam(hackathonID, "alpha", 70, 10, "ai"),
		makeTeam(hackathonID, "beta", 50, 2),
	}
	prize := makePrize(hackathonID, "Best AI Project")
	engine, oddsRepo := newTestEngine(t, NewJitter(7, 5.0), teams, []*models.Prize{prize})

	_, err := engine.PriceCategory(context.Background(), prize, teams)
	require.NoError(t, err)
	_, err = engine.PriceCategory(context.Background(), prize, teams)
	require.NoError(t, err)

	assert.Equal(t, len(teams), oddsRepo.Len(), "one record per (team, prize) pair after repricing")
}

func TestFixedSeedIsDeterministic(t *testing.T) {
	hackathonID := uuid.New()
	teams := []*models.Team{
		makeTeam(hackathonID, "alpha", 70, 10, "ai"),
		makeTeam(hackathonID, "beta", 50, 2, "defi"),
		makeTeam(hackathonID, "gamma", 60, 0),
	}
	prize := makePrize(hackathonID, "Best AI Project")

	engineA, _ := newTestEngine(t, NewJitter(42, 5.0), teams, []*models.Prize{prize})
	engineB, _ := newTestEngine(t, NewJitter(42, 5.0), teams, []*models.Prize{prize})

	recordsA, err := engineA.PriceCategory(context.Background(), prize, teams)
	require.NoError(t, err)
	recordsB, err := engineB.PriceCategory(context.Background(), prize, teams)
	require.NoError(t, err)

	require.Len(t, recordsB, len(recordsA))
	for i := range recordsA {
		assert.Equal(t, recordsA[i].ImpliedProbability, recordsB[i].ImpliedProbability)
		assert.Equal(t, recordsA[i].AmericanOdds, recordsB[i].AmericanOdds)
	}
}

func TestToAmericanClampsExtremes(t *testing.T) {
	engine, _ := newTestEngine(t, NoJitter(), nil, nil)

	assert.Equal(t, -120, engine.toAmerican(0.99))
	assert.Equal(t, -120, engine.toAmerican(1.0))
	assert.Equal(t, 150, engine.toAmerican(0.001))
	assert.Equal(t, 150, engine.toAmerican(0.0))
}

func TestToAmericanFavoriteUnderdogSplit(t *testing.T) {
	engine, _ := newTestEngine(t, NoJitter(), nil, nil)

	// p = 0.6: -100*0.6/0.4 = -150, divided by 6 -> -25
	assert.Equal(t, -25, engine.toAmerican(0.6))
	// p = 0.4: 0.6*100/0.4 = 150, divided by 6 -> 25
	assert.Equal(t, 25, engine.toAmerican(0.4))
}

func TestActivityBonusSaturates(t *testing.T) {
	engine, _ := newTestEngine(t, NoJitter(), nil, nil)

	assert.Zero(t, engine.activityBonus(0))
	assert.Zero(t, engine.activityBonus(-3))

	ten := engine.activityBonus(10)
	assert.InDelta(t, 15.0*(1-math.Exp(-1)), ten, 1e-9)

	huge := engine.activityBonus(10000)
	assert.Less(t, huge, 15.0)
	assert.InDelta(t, 15.0, huge, 1e-3, "bonus saturates at the cap")
	assert.Greater(t, huge, engine.activityBonus(50))
}

func TestJitterStaysWithinSpan(t *testing.T) {
	jitter := NewJitter(99, 5.0)
	for i := 0; i < 1000; i++ {
		v := jitter()
		assert.GreaterOrEqual(t, v, -5.0)
		assert.LessOrEqual(t, v, 5.0)
	}
}
