package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"watchstream/internal/market"
	apperrors "watchstream/pkg/errors"
)

var (
	_ market.WatchlistStore = (*Store)(nil)
	_ market.PriceStore     = (*Store)(nil)
)

// Store keeps watchlists and price history in process. Prices are rounded to
// four places on the way in, like the numeric(14,4) columns.
type Store struct {
	mu         sync.RWMutex
	watchlists map[string][]market.WatchlistEntry
	prices     map[string][]market.PricePoint
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		watchlists: make(map[string][]market.WatchlistEntry),
		prices:     make(map[string][]market.PricePoint),
		now:        time.Now,
	}
}

func (s *Store) WatchlistSymbols(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.watchlists[userID]
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Ticker)
	}
	return out, nil
}

func (s *Store) DistinctWatchedSymbols(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, entries := range s.watchlists {
		for _, e := range entries {
			seen[e.Ticker] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) ListWatchlist(_ context.Context, userID string) ([]market.WatchlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Copy to avoid race
	out := make([]market.WatchlistEntry, len(s.watchlists[userID]))
	copy(out, s.watchlists[userID])
	return out, nil
}

func (s *Store) AddTicker(_ context.Context, userID, ticker string) error {
	ticker = market.Canonical(ticker)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.watchlists[userID] {
		if e.Ticker == ticker {
			return apperrors.Newf(apperrors.ErrCodeConflict, "%s already in watchlist", ticker)
		}
	}
	s.watchlists[userID] = append(s.watchlists[userID], market.WatchlistEntry{
		Ticker:    ticker,
		CreatedAt: s.now().UTC(),
	})
	return nil
}

func (s *Store) RemoveTicker(_ context.Context, userID, ticker string) error {
	ticker = market.Canonical(ticker)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.watchlists[userID]
	for i, e := range entries {
		if e.Ticker != ticker {
			continue
		}
		s.watchlists[userID] = append(entries[:i:i], entries[i+1:]...)
		if len(s.watchlists[userID]) == 0 {
			delete(s.watchlists, userID)
		}
		return nil
	}
	return apperrors.Newf(apperrors.ErrCodeNotFound, "%s not in watchlist", ticker)
}

func (s *Store) PersistPrice(_ context.Context, p market.PricePoint) error {
	p.Ticker = market.Canonical(p.Ticker)
	if p.Timestamp.IsZero() {
		p.Timestamp = s.now()
	}
	p.Timestamp = p.Timestamp.UTC()
	p.Open, p.High, p.Low, p.Close = round4(p.Open), round4(p.High), round4(p.Low), round4(p.Close)
	if p.Volume != nil {
		v := *p.Volume
		p.Volume = &v
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.prices[p.Ticker]
	// keep ascending by timestamp; equal timestamps keep insertion order
	i := sort.Search(len(rows), func(i int) bool { return rows[i].Timestamp.After(p.Timestamp) })
	rows = append(rows, market.PricePoint{})
	copy(rows[i+1:], rows[i:])
	rows[i] = p
	s.prices[p.Ticker] = rows
	return nil
}

func (s *Store) LatestPrice(_ context.Context, symbol string) (*market.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.prices[market.Canonical(symbol)]
	if len(rows) == 0 {
		return nil, nil
	}
	p := rows[len(rows)-1]
	return &p, nil
}

func (s *Store) PriceHistory(_ context.Context, symbol string) ([]market.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.prices[market.Canonical(symbol)]
	out := make([]market.PricePoint, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *Store) CloseCorrelation(_ context.Context, symbol string, window int) (float64, error) {
	s.mu.RLock()
	rows := s.prices[market.Canonical(symbol)]
	closes := make([]float64, len(rows))
	for i, p := range rows {
		closes[i] = p.Close
	}
	s.mu.RUnlock()

	return market.MovingAverageCorrelation(closes, window)
}

func round4(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}
