package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hackbook/internal/metrics"
	"github.com/yourusername/hackbook/internal/models"
	"github.com/yourusername/hackbook/internal/repository"
)

// CommitCounter is the slice of the GitHub client the syncer needs
type CommitCounter interface {
	CommitCount(ctx context.Context, repoURL string, since time.Time) (int, error)
}

// Syncer refreshes each team's activity count from its repository
type Syncer struct {
	counter      CommitCounter
	teamRepo     repository.TeamRepository
	lookbackDays int
	logger       *logrus.Logger
}

// NewSyncer creates an activity syncer
func NewSyncer(counter CommitCounter, teamRepo repository.TeamRepository, lookbackDays int, logger *logrus.Logger) *Syncer {
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	return &Syncer{
		counter:      counter,
		teamRepo:     teamRepo,
		lookbackDays: lookbackDays,
		logger:       logger,
	}
}

// SyncHackathon refreshes activity counts for every team in the hackathon.
// Teams without a repository URL keep their current count. A failure on one
// team is logged and the sync moves on; only loading the team list aborts.
func (s *Syncer) SyncHackathon(ctx context.Context, hackathonID uuid.UUID) error {
	start := time.Now()

	teams, err := s.teamRepo.GetByHackathonID(ctx, hackathonID)
	if err != nil {
		return fmt.Errorf("failed to load teams: %w", err)
	}

	since := time.Now().UTC().AddDate(0, 0, -s.lookbackDays)
	synced, failed := 0, 0

	for _, team := range teams {
		if team.RepoURL == nil || *team.RepoURL == "" {
			continue
		}
		if err := s.syncTeam(ctx, team, since); err != nil {
			failed++
			s.logger.WithError(err).WithFields(logrus.Fields{
				"team_id": team.ID,
				"team":    team.Name,
			}).Warn("Activity sync failed for team")
			continue
		}
		synced++
	}

	metrics.RecordActivitySync(time.Since(start).Seconds())

	s.logger.WithFields(logrus.Fields{
		"hackathon_id": hackathonID,
		"synced":       synced,
		"failed":       failed,
		"duration":     time.Since(start).String(),
	}).Info("Activity sync complete")

	if synced == 0 && failed > 0 {
		return fmt.Errorf("activity sync failed for all %d teams with repositories", failed)
	}
	return nil
}

func (s *Syncer) syncTeam(ctx context.Context, team *models.Team, since time.Time) error {
	count, err := s.counter.CommitCount(ctx, *team.RepoURL, since)
	if err != nil {
		return err
	}

	if count == team.ActivityCount {
		return nil
	}

	if err := s.teamRepo.UpdateActivity(ctx, team.ID, count); err != nil {
		return fmt.Errorf("failed to update activity count: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"team_id":  team.ID,
		"team":     team.Name,
		"previous": team.ActivityCount,
		"current":  count,
	}).Debug("Team activity updated")

	return nil
}
