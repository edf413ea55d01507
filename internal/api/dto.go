package api

import (
	"time"

	"github.com/yourusername/hackbook/internal/models"
)

// PlaceWagerRequest is the POST /wagers payload
type PlaceWagerRequest struct {
	UserID    string  `json:"userId"`
	PrizeID   string  `json:"prizeId"`
	TeamID    string  `json:"teamId"`
	Amount    int64   `json:"amount"`
	OddsAtBet float64 `json:"oddsAtBet"`
}

// PlaceWagerResponse confirms a settled wager
type PlaceWagerResponse struct {
	WagerID    string         `json:"wagerId"`
	NewBalance int64          `json:"newBalance"`
	LiveOdds   *OddsRecordDTO `json:"liveOdds,omitempty"`
}

// OddsRecordDTO is the wire form of a priced (team, prize) pair
type OddsRecordDTO struct {
	TeamID             string    `json:"teamId"`
	PrizeID            string    `json:"prizeId"`
	ImpliedProbability float64   `json:"impliedProbability"`
	AmericanOdds       int       `json:"americanOdds"`
	DecimalOdds        float64   `json:"decimalOdds"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// MarketResponse is the GET /markets/{prizeID} payload
type MarketResponse struct {
	PrizeID   string `json:"prizeId"`
	Status    string `json:"status"`
	TotalPool int64  `json:"totalPool"`
}

// WagerResponse is the wire form of a placed wager
type WagerResponse struct {
	WagerID   string     `json:"wagerId"`
	UserID    string     `json:"userId"`
	PrizeID   string     `json:"prizeId"`
	TeamID    string     `json:"teamId"`
	Amount    int64      `json:"amount"`
	OddsAtBet float64    `json:"oddsAtBet"`
	Status    string     `json:"status"`
	PlacedAt  time.Time  `json:"placedAt"`
	SettledAt *time.Time `json:"settledAt,omitempty"`
	Payout    *int64     `json:"payout,omitempty"`
}

// ErrorResponse carries a machine-readable error code and a message
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func toOddsRecordDTO(r *models.OddsRecord) *OddsRecordDTO {
	return &OddsRecordDTO{
		TeamID:             r.TeamID.String(),
		PrizeID:            r.PrizeID.String(),
		ImpliedProbability: r.ImpliedProbability,
		AmericanOdds:       r.AmericanOdds,
		DecimalOdds:        r.DecimalOdds,
		UpdatedAt:          r.UpdatedAt,
	}
}

func toOddsRecordDTOs(records []*models.OddsRecord) []*OddsRecordDTO {
	out := make([]*OddsRecordDTO, len(records))
	for i, r := range records {
		out[i] = toOddsRecordDTO(r)
	}
	return out
}

func toWagerResponse(w *models.Wager) *WagerResponse {
	return &WagerResponse{
		WagerID:   w.ID.String(),
		UserID:    w.UserID.String(),
		PrizeID:   w.PrizeID.String(),
		TeamID:    w.TeamID.String(),
		Amount:    w.Amount,
		OddsAtBet: w.OddsAtBet,
		Status:    string(w.Status),
		PlacedAt:  w.PlacedAt,
		SettledAt: w.SettledAt,
		Payout:    w.Payout,
	}
}
