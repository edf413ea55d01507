// Package odds implements the pricing engine: it turns team quality signals
// into implied probabilities and bounded American/decimal odds with a house
// edge baked in.
package odds

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hackbook/internal/config"
	"github.com/yourusername/hackbook/internal/metrics"
	"github.com/yourusername/hackbook/internal/models"
	"github.com/yourusername/hackbook/internal/repository"
)

// Publisher receives freshly priced records, e.g. for websocket broadcast.
type Publisher interface {
	PublishOdds(prizeID uuid.UUID, records []*models.OddsRecord)
}

// BatchResult summarizes a multi-prize engine run
type BatchResult struct {
	PrizesPriced    int
	PrizesSkipped   int
	RecordsComputed int
}

// String returns a log-friendly summary
func (r *BatchResult) String() string {
	return fmt.Sprintf("%d prizes priced, %d skipped, %d records", r.PrizesPriced, r.PrizesSkipped, r.RecordsComputed)
}

// Engine prices every (team, prize) pair of a hackathon
type Engine struct {
	cfg       config.OddsConfig
	oddsRepo  repository.OddsRepository
	teamRepo  repository.TeamRepository
	prizeRepo repository.PrizeRepository
	jitter    JitterFunc
	cache     *Cache
	publisher Publisher
	logger    *logrus.Logger
	now       func() time.Time
}

// Option configures optional engine collaborators
type Option func(*Engine)

// WithCache attaches a read cache that is refreshed on every pricing run
func WithCache(cache *Cache) Option {
	return func(e *Engine) { e.cache = cache }
}

// WithPublisher attaches a publisher notified after every pricing run
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithClock overrides the engine's time source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a pricing engine
func NewEngine(
	cfg config.OddsConfig,
	oddsRepo repository.OddsRepository,
	teamRepo repository.TeamRepository,
	prizeRepo repository.PrizeRepository,
	jitter JitterFunc,
	logger *logrus.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		cfg:       cfg,
		oddsRepo:  oddsRepo,
		teamRepo:  teamRepo,
		prizeRepo: prizeRepo,
		jitter:    jitter,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PriceHackathon recomputes odds for every prize of a hackathon. A prize with
// a degenerate rating sum is skipped and the run continues; only
// infrastructure failures abort the batch.
func (e *Engine) PriceHackathon(ctx context.Context, hackathonID uuid.UUID) (*BatchResult, error) {
	metrics.OddsBatchesTotal.Inc()

	prizes, err := e.prizeRepo.GetByHackathonID(ctx, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prizes: %w", err)
	}

	teams, err := e.teamRepo.GetByHackathonID(ctx, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}

	result := &BatchResult{}
	for _, prize := range prizes {
		records, err := e.PriceCategory(ctx, prize, teams)
		if err != nil {
			if isSkip(err) {
				result.PrizesSkipped++
				continue
			}
			return result, err
		}
		result.PrizesPriced++
		result.RecordsComputed += len(records)
	}

	e.logger.WithFields(logrus.Fields{
		"hackathon_id": hackathonID,
		"priced":       result.PrizesPriced,
		"skipped":      result.PrizesSkipped,
		"records":      result.RecordsComputed,
	}).Info("Odds batch complete")

	return result, nil
}

// RecomputePrize reprices a single prize's market, typically after a wager
// moved its pool.
func (e *Engine) RecomputePrize(ctx context.Context, prizeID uuid.UUID) error {
	prize, err := e.prizeRepo.GetByID(ctx, prizeID)
	if err != nil {
		return fmt.Errorf("failed to load prize: %w", err)
	}

	teams, err := e.teamRepo.GetByHackathonID(ctx, prize.HackathonID)
	if err != nil {
		return fmt.Errorf("failed to load teams: %w", err)
	}

	_, err = e.PriceCategory(ctx, prize, teams)
	if err != nil && isSkip(err) {
		// Degenerate ratings are not the worker's problem to retry.
		return nil
	}
	return err
}

// PriceCategory computes and upserts one OddsRecord per team for the given
// prize. Zero teams is a no-op. A zero-or-negative adjusted rating sum skips
// the prize with models.ErrOddsComputationSkipped.
func (e *Engine) PriceCategory(ctx context.Context, prize *models.Prize, teams []*models.Team) ([]*models.OddsRecord, error) {
	start := e.now()

	if len(teams) == 0 {
		e.logger.WithField("prize_id", prize.ID).Debug("No competing teams, nothing to price")
		return nil, nil
	}

	pr, err := e.computePricing(prize, teams)
	if err != nil {
		if isSkip(err) {
			metrics.RecordPrizeSkipped()
			e.logger.WithFields(logrus.Fields{
				"prize_id": prize.ID,
				"category": prize.CategoryLabel,
			}).Warn("Skipping prize with degenerate rating sum")
		}
		return nil, err
	}

	records := make([]*models.OddsRecord, len(teams))
	updatedAt := e.now()
	for i, team := range teams {
		american := e.toAmerican(pr.finalProbs[i])
		records[i] = &models.OddsRecord{
			TeamID:             team.ID,
			PrizeID:            prize.ID,
			ImpliedProbability: pr.finalProbs[i],
			AmericanOdds:       american,
			DecimalOdds:        models.AmericanToDecimal(american),
			UpdatedAt:          updatedAt,
		}
	}

	if err := e.oddsRepo.UpsertBatch(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to persist odds for prize %s: %w", prize.ID, err)
	}

	if e.cache != nil {
		e.cache.SetPrize(prize.ID, records)
	}
	if e.publisher != nil {
		e.publisher.PublishOdds(prize.ID, records)
	}

	metrics.RecordPricing(len(records), e.now().Sub(start).Seconds())

	return records, nil
}

// pricing holds the intermediate probability vectors. The two-step
// scale-then-renormalize sequence is the contract: vigProbs must sum to
// (1 - vigorish) before finalProbs renormalize to 1.
type pricing struct {
	rawProbs   []float64
	vigProbs   []float64
	finalProbs []float64
}

// computePricing runs the rating → probability pipeline for one prize
func (e *Engine) computePricing(prize *models.Prize, teams []*models.Team) (*pricing, error) {
	adjusted := make([]float64, len(teams))
	var sum float64
	for i, team := range teams {
		adjusted[i] = e.adjustedRating(prize, team)
		sum += adjusted[i]
	}
	if sum <= 0 {
		return nil, fmt.Errorf("%w: total adjusted rating %.2f for prize %s", models.ErrOddsComputationSkipped, sum, prize.ID)
	}

	// Negative individual ratings are floored so no team carries a negative
	// probability; the skip decision above is based on the unfloored sum.
	var flooredSum float64
	for i := range adjusted {
		if adjusted[i] < 0 {
			adjusted[i] = 0
		}
		flooredSum += adjusted[i]
	}

	pr := &pricing{
		rawProbs:   make([]float64, len(teams)),
		vigProbs:   make([]float64, len(teams)),
		finalProbs: make([]float64, len(teams)),
	}

	var vigSum float64
	for i := range adjusted {
		pr.rawProbs[i] = adjusted[i] / flooredSum
		pr.vigProbs[i] = pr.rawProbs[i] * (1 - e.cfg.Vigorish)
		vigSum += pr.vigProbs[i]
	}

	for i := range pr.vigProbs {
		pr.finalProbs[i] = pr.vigProbs[i] / vigSum
	}

	return pr, nil
}

// adjustedRating combines the externally supplied quality signals with the
// category alignment bonus and jitter
func (e *Engine) adjustedRating(prize *models.Prize, team *models.Team) float64 {
	rating := team.BaseRating + e.activityBonus(team.ActivityCount) + e.jitter()
	if !prize.IsOverall() && team.MatchesCategory(prize.CategoryLabel) {
		rating += e.cfg.AlignmentBonus
	}
	return rating
}

// activityBonus rewards recent repository activity with diminishing returns,
// saturating at the configured cap. Ten commits are worth roughly half the
// cap; the curve flattens from there.
func (e *Engine) activityBonus(activityCount int) float64 {
	if activityCount <= 0 {
		return 0
	}
	return e.cfg.ActivityBonusMax * (1 - math.Exp(-float64(activityCount)/10.0))
}

// toAmerican converts a final probability to clamped American odds. Favorites
// (p >= 0.5) go negative, underdogs positive; the divisor keeps the numbers
// human-friendly before clamping.
func (e *Engine) toAmerican(p float64) int {
	var american float64
	if p >= 0.5 {
		if p >= 1 {
			return e.cfg.AmericanClampMin
		}
		american = -100 * p / (1 - p)
	} else {
		if p <= 0 {
			return e.cfg.AmericanClampMax
		}
		american = (1 - p) * 100 / p
	}

	scaled := int(math.Round(american / e.cfg.AmericanDivisor))
	if scaled < e.cfg.AmericanClampMin {
		return e.cfg.AmericanClampMin
	}
	if scaled > e.cfg.AmericanClampMax {
		return e.cfg.AmericanClampMax
	}
	return scaled
}

func isSkip(err error) bool {
	return errors.Is(err, models.ErrOddsComputationSkipped)
}
