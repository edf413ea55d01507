package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Team represents a competing hackathon team
type Team struct {
	ID            uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	HackathonID   uuid.UUID `db:"hackathon_id" json:"hackathon_id" validate:"required,uuid4"`
	Name          string    `db:"name" json:"name" validate:"required"`
	CategoryTags  []string  `db:"category_tags" json:"category_tags"`
	BaseRating    float64   `db:"base_rating" json:"base_rating" validate:"gte=0,lte=100"` // externally derived from skill/experience signals
	ActivityCount int       `db:"activity_count" json:"activity_count" validate:"gte=0"`   // recent commits
	RepoURL       *string   `db:"repo_url" json:"repo_url"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// MatchesCategory reports whether the team's tags or name keyword-match the
// given prize category. Matching is case-insensitive and substring-based in
// both directions, so a "DeFi" team matches a "Best DeFi Project" prize.
func (t *Team) MatchesCategory(category string) bool {
	needle := strings.ToLower(strings.TrimSpace(category))
	if needle == "" {
		return false
	}

	for _, tag := range t.CategoryTags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if strings.Contains(needle, tag) || strings.Contains(tag, needle) {
			return true
		}
	}

	return strings.Contains(strings.ToLower(t.Name), needle)
}
