// Package settlement moves currency from a user's balance into a market's
// pool while recording the wager. The debit, pool credit and wager insert are
// atomic; the caller always gets a definitive success or a typed failure.
package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hackbook/internal/metrics"
	"github.com/yourusername/hackbook/internal/models"
	"github.com/yourusername/hackbook/internal/repository"
)

// Request represents one wager placement
type Request struct {
	UserID    uuid.UUID
	PrizeID   uuid.UUID
	TeamID    uuid.UUID
	Amount    int64
	OddsAtBet float64 // decimal odds the user saw; recorded, not re-validated
}

// Result is returned on a definitive successful settlement
type Result struct {
	WagerID    uuid.UUID
	NewBalance int64
	LiveOdds   *models.OddsRecord // current server price, nil if unavailable
}

// RecomputeTrigger asks for the market's odds to be recomputed after a wager
// moved its pool. Fire-and-forget: the wager is already committed when this
// is called, convergence is the trigger's responsibility.
type RecomputeTrigger interface {
	TriggerRecompute(prizeID uuid.UUID)
}

// Service validates and settles wagers
type Service struct {
	store      repository.SettlementStore
	oddsRepo   repository.OddsRepository
	trigger    RecomputeTrigger
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
	logger     *logrus.Logger
}

// NewService creates a settlement service. oddsRepo and trigger are optional.
func NewService(
	store repository.SettlementStore,
	oddsRepo repository.OddsRepository,
	trigger RecomputeTrigger,
	maxRetries int,
	backoff time.Duration,
	timeout time.Duration,
	logger *logrus.Logger,
) *Service {
	return &Service{
		store:      store,
		oddsRepo:   oddsRepo,
		trigger:    trigger,
		maxRetries: maxRetries,
		backoff:    backoff,
		timeout:    timeout,
		logger:     logger,
	}
}

// PlaceWager validates the request, settles it atomically and triggers an
// odds recompute for the affected market.
//
// Validation order, first failure wins: ErrInvalidAmount,
// ErrUnauthenticated, ErrMarketClosed, ErrInsufficientBalance. Transient
// transaction conflicts are retried with exponential backoff up to the
// configured bound, then surfaced as ErrSettlementFailed. Validation
// failures and settlement failures leave no state change behind.
func (s *Service) PlaceWager(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if req.Amount <= 0 {
		metrics.RecordWagerRejected("invalid_amount")
		return nil, models.ErrInvalidAmount
	}
	if req.UserID == uuid.Nil {
		metrics.RecordWagerRejected("unauthenticated")
		return nil, models.ErrUnauthenticated
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	wager := &models.Wager{
		ID:        uuid.New(),
		UserID:    req.UserID,
		PrizeID:   req.PrizeID,
		TeamID:    req.TeamID,
		Amount:    req.Amount,
		OddsAtBet: req.OddsAtBet,
		Status:    models.WagerStatusPending,
		PlacedAt:  start.UTC(),
	}

	newBalance, newPool, err := s.settleWithRetry(ctx, wager)
	if err != nil {
		metrics.RecordWagerRejected(rejectionReason(err))
		return nil, err
	}

	metrics.RecordWagerPlaced(time.Since(start).Seconds())
	metrics.UpdateMarketPool(wager.PrizeID.String(), float64(newPool))

	s.logger.WithFields(logrus.Fields{
		"wager_id":    wager.ID,
		"user_id":     wager.UserID,
		"prize_id":    wager.PrizeID,
		"team_id":     wager.TeamID,
		"amount":      wager.Amount,
		"odds_at_bet": wager.OddsAtBet,
		"new_balance": newBalance,
	}).Info("Wager settled")

	if s.trigger != nil {
		s.trigger.TriggerRecompute(wager.PrizeID)
	}

	result := &Result{WagerID: wager.ID, NewBalance: newBalance}
	if s.oddsRepo != nil {
		// Best effort: lets the caller spot how stale their quoted price was.
		if live, err := s.oddsRepo.Get(ctx, wager.TeamID, wager.PrizeID); err == nil {
			result.LiveOdds = live
		}
	}

	return result, nil
}

// settleWithRetry runs the atomic placement, retrying transient transaction
// conflicts with exponential backoff until the bound or the deadline is hit.
func (s *Service) settleWithRetry(ctx context.Context, wager *models.Wager) (int64, int64, error) {
	backoff := s.backoff
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.RecordSettlementRetry()
			select {
			case <-ctx.Done():
				return 0, 0, models.ErrSettlementFailed
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		newBalance, newPool, err := s.store.PlaceWager(ctx, wager)
		if err == nil {
			return newBalance, newPool, nil
		}

		switch {
		case errors.Is(err, models.ErrInsufficientBalance):
			return 0, 0, models.ErrInsufficientBalance
		case errors.Is(err, models.ErrMarketClosed), errors.Is(err, models.ErrNotFound):
			// A market that does not exist is not accepting wagers.
			return 0, 0, models.ErrMarketClosed
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return 0, 0, models.ErrSettlementFailed
		case repository.IsRetryable(err):
			lastErr = err
			s.logger.WithError(err).WithFields(logrus.Fields{
				"wager_id": wager.ID,
				"attempt":  attempt + 1,
			}).Warn("Settlement transaction conflict, retrying")
		default:
			lastErr = err
			s.logger.WithError(err).WithField("wager_id", wager.ID).Error("Settlement transaction failed")
		}
	}

	s.logger.WithError(lastErr).WithField("wager_id", wager.ID).Error("Settlement failed after retries")
	return 0, 0, models.ErrSettlementFailed
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, models.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, models.ErrMarketClosed):
		return "market_closed"
	case errors.Is(err, models.ErrInsufficientBalance):
		return "insufficient_balance"
	default:
		return "settlement_failed"
	}
}
