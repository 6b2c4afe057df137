package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"watchstream/internal/market"
	apperrors "watchstream/pkg/errors"
)

type priceRow struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
}

type correlationResponse struct {
	Ticker      string  `json:"ticker"`
	Correlation float64 `json:"correlation"`
}

func (s *Server) priceHistoryHandler(w http.ResponseWriter, r *http.Request) {
	ticker := market.Canonical(mux.Vars(r)["ticker"])

	history, err := s.deps.Prices.PriceHistory(r.Context(), ticker)
	if err != nil {
		s.logger.Error("price history", zap.String("ticker", ticker), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load prices")
		return
	}

	rows := make([]priceRow, 0, len(history))
	for _, p := range history {
		rows = append(rows, priceRow{Timestamp: p.Timestamp, Open: p.Open, High: p.High, Low: p.Low, Close: p.Close})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) correlationHandler(w http.ResponseWriter, r *http.Request) {
	ticker := market.Canonical(mux.Vars(r)["ticker"])

	corr, err := s.deps.Prices.CloseCorrelation(r.Context(), ticker, s.opts.CorrelationWindow)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeInsufficientData) {
			writeError(w, http.StatusBadRequest, "Not enough data to compute correlation")
			return
		}
		s.logger.Error("close correlation", zap.String("ticker", ticker), zap.Error(err))
		writeError(w, statusFor(err), "Failed to compute correlation")
		return
	}
	writeJSON(w, http.StatusOK, correlationResponse{Ticker: ticker, Correlation: corr})
}
