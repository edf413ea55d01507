package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prize represents a prize category within a hackathon. Prizes are created at
// hackathon setup and are read-only during betting.
type Prize struct {
	ID            uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	HackathonID   uuid.UUID `db:"hackathon_id" json:"hackathon_id" validate:"required,uuid4"`
	CategoryLabel string    `db:"category_label" json:"category_label" validate:"required"`
	Amount        int64     `db:"amount" json:"amount" validate:"gte=0"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// IsOverall reports whether this is the generic grand prize. Category
// alignment bonuses never apply to it.
func (p *Prize) IsOverall() bool {
	label := strings.ToLower(p.CategoryLabel)
	return strings.Contains(label, "overall") || strings.Contains(label, "grand prize")
}
