// Package recompute runs post-wager odds recalculation off the settlement
// critical path. Wager callers get their response before the market is
// repriced; the worker guarantees eventual convergence with bounded retries,
// and the scheduler's periodic full refresh is the backstop.
package recompute

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hackbook/internal/metrics"
)

// Recomputer reprices a single prize's market
type Recomputer interface {
	RecomputePrize(ctx context.Context, prizeID uuid.UUID) error
}

// Worker consumes recompute jobs from an in-process queue
type Worker struct {
	engine     Recomputer
	jobs       chan uuid.UUID
	maxRetries int
	backoff    time.Duration
	jobTimeout time.Duration
	logger     *logrus.Logger
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

// NewWorker creates a recompute worker with a bounded queue
func NewWorker(engine Recomputer, queueLen, maxRetries int, logger *logrus.Logger) *Worker {
	if queueLen <= 0 {
		queueLen = 64
	}
	return &Worker{
		engine:     engine,
		jobs:       make(chan uuid.UUID, queueLen),
		maxRetries: maxRetries,
		backoff:    100 * time.Millisecond,
		jobTimeout: 30 * time.Second,
		logger:     logger,
	}
}

// TriggerRecompute enqueues a recompute job for the prize's market. Never
// blocks the caller: if the queue is full the job is dropped and the periodic
// refresh picks up the slack.
func (w *Worker) TriggerRecompute(prizeID uuid.UUID) {
	select {
	case w.jobs <- prizeID:
		metrics.RecomputeQueueDepth.Set(float64(len(w.jobs)))
	default:
		metrics.RecomputeDroppedTotal.Inc()
		w.logger.WithField("prize_id", prizeID).Warn("Recompute queue full, dropping job")
	}
}

// Start launches the worker loop. It drains until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case prizeID := <-w.jobs:
				metrics.RecomputeQueueDepth.Set(float64(len(w.jobs)))
				w.process(ctx, prizeID)
			}
		}
	}()
}

// Wait blocks until the worker loop has exited
func (w *Worker) Wait() {
	w.wg.Wait()
}

// process retries a single job with exponential backoff
func (w *Worker) process(ctx context.Context, prizeID uuid.UUID) {
	metrics.RecomputeJobsTotal.Inc()
	backoff := w.backoff

	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
		err := w.engine.RecomputePrize(jobCtx, prizeID)
		cancel()

		if err == nil {
			return
		}

		w.logger.WithError(err).WithFields(logrus.Fields{
			"prize_id": prizeID,
			"attempt":  attempt + 1,
		}).Warn("Odds recompute failed")
	}

	w.logger.WithField("prize_id", prizeID).Error("Odds recompute abandoned after retries; periodic refresh will converge")
}
