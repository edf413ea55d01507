// Package api exposes the public HTTP surface: wager placement, odds and
// market reads, and the websocket odds stream.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hackbook/internal/config"
	"github.com/yourusername/hackbook/internal/models"
	"github.com/yourusername/hackbook/internal/odds"
	"github.com/yourusername/hackbook/internal/repository"
	"github.com/yourusername/hackbook/internal/settlement"
)

// Server is the public HTTP API
type Server struct {
	cfg        config.ServerConfig
	settlement *settlement.Service
	repos      *repository.Repositories
	cache      *odds.Cache
	ws         http.HandlerFunc
	logger     *logrus.Logger
	tokens     map[string]struct{}
	middleware []func(http.Handler) http.Handler
	server     *http.Server
}

// NewServer creates the API server. cache and ws are optional.
func NewServer(
	cfg config.ServerConfig,
	settlementSvc *settlement.Service,
	repos *repository.Repositories,
	cache *odds.Cache,
	ws http.HandlerFunc,
	logger *logrus.Logger,
) *Server {
	tokens := make(map[string]struct{}, len(cfg.APITokens))
	for _, t := range cfg.APITokens {
		tokens[t] = struct{}{}
	}
	return &Server{
		cfg:        cfg,
		settlement: settlementSvc,
		repos:      repos,
		cache:      cache,
		ws:         ws,
		logger:     logger,
		tokens:     tokens,
	}
}

// Use installs middleware wrapped around the router when the server starts
func (s *Server) Use(mw func(http.Handler) http.Handler) {
	s.middleware = append(s.middleware, mw)
}

// Router builds the HTTP handler
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/wagers", s.handleWagers)      // POST
	mux.HandleFunc("/wagers/", s.handleGetWager)   // GET /wagers/{id}
	mux.HandleFunc("/odds/", s.handleGetOdds)      // GET /odds/{prizeID}
	mux.HandleFunc("/markets/", s.handleGetMarket) // GET /markets/{prizeID}
	if s.ws != nil {
		mux.HandleFunc("/ws", s.ws)
	}
	return mux
}

// Start runs the server in the background and shuts it down when ctx ends
func (s *Server) Start(ctx context.Context) error {
	handler := http.Handler(s.Router())
	for i := len(s.middleware) - 1; i >= 0; i-- {
		handler = s.middleware[i](handler)
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithField("port", s.cfg.Port).Info("API server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("API server error")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// authenticated checks the bearer token against the configured token list. An
// empty token list disables authentication for local development.
func (s *Server) authenticated(r *http.Request) bool {
	if len(s.tokens) == 0 {
		return true
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	_, ok = s.tokens[token]
	return ok
}

func (s *Server) handleWagers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req PlaceWagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "request body is not valid JSON")
		return
	}

	userID := uuid.Nil
	if s.authenticated(r) {
		// An unparseable user ID settles as unauthenticated downstream.
		userID, _ = uuid.Parse(req.UserID)
	}

	prizeID, err := uuid.Parse(req.PrizeID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_prize_id", "prizeId must be a UUID")
		return
	}
	teamID, err := uuid.Parse(req.TeamID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_team_id", "teamId must be a UUID")
		return
	}

	result, err := s.settlement.PlaceWager(r.Context(), settlement.Request{
		UserID:    userID,
		PrizeID:   prizeID,
		TeamID:    teamID,
		Amount:    req.Amount,
		OddsAtBet: req.OddsAtBet,
	})
	if err != nil {
		s.writeSettlementError(w, err)
		return
	}

	resp := PlaceWagerResponse{
		WagerID:    result.WagerID.String(),
		NewBalance: result.NewBalance,
	}
	if result.LiveOdds != nil {
		resp.LiveOdds = toOddsRecordDTO(result.LiveOdds)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetWager(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/wagers/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_wager_id", "wager id must be a UUID")
		return
	}

	wager, err := s.repos.Wager.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "wager not found")
			return
		}
		s.logger.WithError(err).Error("Failed to load wager")
		writeError(w, http.StatusInternalServerError, "internal", "failed to load wager")
		return
	}

	writeJSON(w, http.StatusOK, toWagerResponse(wager))
}

// handleGetOdds serves the latest priced records for a prize, preferring the
// short-TTL cache. Staleness within the TTL is accepted.
func (s *Server) handleGetOdds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	prizeID, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/odds/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_prize_id", "prize id must be a UUID")
		return
	}

	if s.cache != nil {
		if records, found := s.cache.GetPrize(prizeID); found {
			writeJSON(w, http.StatusOK, toOddsRecordDTOs(records))
			return
		}
	}

	records, err := s.repos.Odds.GetByPrizeID(r.Context(), prizeID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load odds")
		writeError(w, http.StatusInternalServerError, "internal", "failed to load odds")
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "not_found", "no odds for this prize")
		return
	}

	if s.cache != nil {
		s.cache.SetPrize(prizeID, records)
	}
	writeJSON(w, http.StatusOK, toOddsRecordDTOs(records))
}

func (s *Server) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	prizeID, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/markets/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_prize_id", "prize id must be a UUID")
		return
	}

	market, err := s.repos.Market.GetByPrizeID(r.Context(), prizeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "market not found")
			return
		}
		s.logger.WithError(err).Error("Failed to load market")
		writeError(w, http.StatusInternalServerError, "internal", "failed to load market")
		return
	}

	writeJSON(w, http.StatusOK, MarketResponse{
		PrizeID:   market.PrizeID.String(),
		Status:    string(market.Status),
		TotalPool: market.TotalPool,
	})
}

// writeSettlementError maps the settlement error taxonomy to HTTP statuses
func (s *Server) writeSettlementError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid_amount", "wager amount must be a positive integer")
	case errors.Is(err, models.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthenticated", "a valid bearer token and user id are required")
	case errors.Is(err, models.ErrMarketClosed):
		writeError(w, http.StatusConflict, "market_closed", "this market is not accepting wagers")
	case errors.Is(err, models.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, "insufficient_balance", "balance does not cover the wager amount")
	case errors.Is(err, models.ErrSettlementFailed):
		writeError(w, http.StatusServiceUnavailable, "settlement_failed", "wager could not be settled, no funds were moved")
	default:
		s.logger.WithError(err).Error("Unexpected settlement error")
		writeError(w, http.StatusInternalServerError, "internal", "unexpected error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
