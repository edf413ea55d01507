package activity

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/hackbook/internal/models"
)

type stubCounter struct {
	counts map[string]int
	err    error
}

func (s *stubCounter) CommitCount(ctx context.Context, repoURL string, since time.Time) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.counts[repoURL], nil
}

type stubTeamRepo struct {
	teams   []*models.Team
	updates map[uuid.UUID]int
}

func (s *stubTeamRepo) Create(ctx context.Context, team *models.Team) error { return nil }
func (s *stubTeamRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	return nil, models.ErrNotFound
}
func (s *stubTeamRepo) GetByHackathonID(ctx context.Context, hackathonID uuid.UUID) ([]*models.Team, error) {
	return s.teams, nil
}
func (s *stubTeamRepo) UpdateRating(ctx context.Context, id uuid.UUID, baseRating float64) error {
	return nil
}
func (s *stubTeamRepo) UpdateActivity(ctx context.Context, id uuid.UUID, activityCount int) error {
	if s.updates == nil {
		s.updates = make(map[uuid.UUID]int)
	}
	s.updates[id] = activityCount
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func teamWithRepo(name, repoURL string, current int) *models.Team {
	url := repoURL
	return &models.Team{
		ID:            uuid.New(),
		HackathonID:   uuid.New(),
		Name:          name,
		RepoURL:       &url,
		ActivityCount: current,
	}
}

func TestSyncHackathonUpdatesChangedCounts(t *testing.T) {
	active := teamWithRepo("active", "https://github.com/acme/active", 3)
	unchanged := teamWithRepo("steady", "https://github.com/acme/steady", 5)
	noRepo := &models.Team{ID: uuid.New(), Name: "ghost"}

	counter := &stubCounter{counts: map[string]int{
		"https://github.com/acme/active": 12,
		"https://github.com/acme/steady": 5,
	}}
	repo := &stubTeamRepo{teams: []*models.Team{active, unchanged, noRepo}}
	syncer := NewSyncer(counter, repo, 7, testLogger())

	require.NoError(t, syncer.SyncHackathon(context.Background(), uuid.New()))

	assert.Equal(t, 12, repo.updates[active.ID])
	_, touched := repo.updates[unchanged.ID]
	assert.False(t, touched, "an unchanged count skips the write")
	_, touched = repo.updates[noRepo.ID]
	assert.False(t, touched, "teams without a repository are left alone")
}

func TestSyncHackathonSurfacesTotalFailure(t *testing.T) {
	team := teamWithRepo("doomed", "https://github.com/acme/doomed", 0)
	counter := &stubCounter{err: errors.New("api unavailable")}
	repo := &stubTeamRepo{teams: []*models.Team{team}}
	syncer := NewSyncer(counter, repo, 7, testLogger())

	err := syncer.SyncHackathon(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Empty(t, repo.updates)
}

func TestRepoSlug(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://github.com/acme/rocket", "acme/rocket", false},
		{"https://github.com/acme/rocket.git", "acme/rocket", false},
		{"https://github.com/acme/rocket/", "acme/rocket", false},
		{"acme/rocket", "acme/rocket", false},
		{"rocket", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := repoSlug(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
