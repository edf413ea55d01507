// Package scheduler drives the periodic background jobs: full odds refreshes
// and GitHub activity syncs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hackbook/internal/odds"
)

// ActivitySyncer refreshes team activity counts from the outside world
type ActivitySyncer interface {
	SyncHackathon(ctx context.Context, hackathonID uuid.UUID) error
}

// Scheduler manages the recurring pricing and sync jobs
type Scheduler struct {
	cron            *cron.Cron
	engine          *odds.Engine
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(engine *odds.Engine, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		engine:          engine,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleOddsRefresh schedules the full hackathon repricing run. This is the
// convergence backstop: even if individual recompute jobs are dropped, every
// market gets repriced on this cadence.
func (s *Scheduler) ScheduleOddsRefresh(cronExpression string, hackathonID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		result, err := s.engine.PriceHackathon(ctx, hackathonID)
		if err != nil {
			s.logger.WithError(err).WithField("hackathon_id", hackathonID).Error("Scheduled odds refresh failed")
			return
		}
		s.logger.WithField("hackathon_id", hackathonID).Infof("Scheduled odds refresh completed: %s", result.String())
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled odds refresh job")

	return nil
}

// ScheduleActivitySync schedules the GitHub commit-activity sync followed by a
// repricing run so fresh activity shows up in the odds.
func (s *Scheduler) ScheduleActivitySync(cronExpression string, syncer ActivitySyncer, hackathonID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := syncer.SyncHackathon(ctx, hackathonID); err != nil {
			s.logger.WithError(err).WithField("hackathon_id", hackathonID).Error("Scheduled activity sync failed")
			return
		}

		result, err := s.engine.PriceHackathon(ctx, hackathonID)
		if err != nil {
			s.logger.WithError(err).WithField("hackathon_id", hackathonID).Error("Post-sync odds refresh failed")
			return
		}
		s.logger.WithField("hackathon_id", hackathonID).Infof("Activity sync completed: %s", result.String())
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled activity sync job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out with jobs still running")
	}
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
