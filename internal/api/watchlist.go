package api

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"watchstream/internal/auth"
	"watchstream/internal/market"
	"watchstream/internal/stream"
	apperrors "watchstream/pkg/errors"
)

// maxTickerLen matches the watchlists.ticker column.
const maxTickerLen = 10

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,10}(\.NS)?$`)

// ValidTicker reports whether a canonical ticker is accepted on a watchlist.
func ValidTicker(ticker string) bool {
	return len(ticker) <= maxTickerLen && tickerPattern.MatchString(ticker)
}

type addTickerRequest struct {
	Ticker string `json:"ticker"`
}

type tickerChange struct {
	Action string `json:"action"`
	Ticker string `json:"ticker"`
}

func (s *Server) listWatchlistHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	entries, err := s.deps.Watchlists.ListWatchlist(r.Context(), p.ID)
	if err != nil {
		s.logger.Error("list watchlist", zap.String("user_id", p.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load watchlist")
		return
	}
	if entries == nil {
		entries = []market.WatchlistEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) addTickerHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	var req addTickerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticker := market.Canonical(req.Ticker)
	if !ValidTicker(ticker) {
		writeError(w, http.StatusBadRequest, "Invalid ticker format")
		return
	}

	if err := s.deps.Watchlists.AddTicker(r.Context(), p.ID, ticker); err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeConflict) {
			writeError(w, http.StatusBadRequest, "Ticker already in your watchlist")
			return
		}
		s.logger.Error("add ticker", zap.String("user_id", p.ID), zap.String("ticker", ticker), zap.Error(err))
		writeError(w, statusFor(err), "Failed to add ticker")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"ticker": ticker})

	s.notifyChange(r.Context(), p.ID, stream.ActionAdded, ticker)
	s.startBackfill(ticker)
}

func (s *Server) removeTickerHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	ticker := market.Canonical(mux.Vars(r)["ticker"])

	if err := s.deps.Watchlists.RemoveTicker(r.Context(), p.ID, ticker); err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
			writeError(w, http.StatusNotFound, "Ticker not found in watchlist")
			return
		}
		s.logger.Error("remove ticker", zap.String("user_id", p.ID), zap.String("ticker", ticker), zap.Error(err))
		writeError(w, statusFor(err), "Failed to remove ticker")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"removed": ticker})

	s.notifyChange(r.Context(), p.ID, stream.ActionRemoved, ticker)
}

// notifyChange re-reads the watchlist so the live subscription set matches
// storage, then tells the user's open stream what changed.
func (s *Server) notifyChange(ctx context.Context, userID, action, ticker string) {
	symbols, err := s.deps.Watchlists.WatchlistSymbols(ctx, userID)
	if err != nil {
		s.logger.Warn("refresh subscription", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if !s.deps.Router.UpdateSymbols(userID, symbols) {
		return // no open stream
	}
	s.deps.Router.PublishToIdentity(userID, tickerChange{Action: action, Ticker: ticker})
}

func (s *Server) startBackfill(ticker string) {
	if s.deps.Backfill == nil {
		return
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), backfillTimeout)
		defer cancel()

		if _, err := s.deps.Backfill.Backfill(ctx, ticker); err != nil {
			s.logger.Warn("backfill failed", zap.String("ticker", ticker), zap.Error(err))
		}
	}()
}

func (s *Server) debugBroadcastHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	payload := map[string]any{"action": "debug", "message": "hello from server"}
	if r.ContentLength > 0 {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
			writeError(w, http.StatusBadRequest, "Payload must be a JSON object")
			return
		}
		payload = body
	}

	delivered := s.deps.Router.PublishToIdentity(p.ID, payload)
	writeJSON(w, http.StatusOK, map[string]bool{"delivered": delivered})
}
