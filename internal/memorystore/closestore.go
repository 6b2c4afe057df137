package memorystore

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"watchstream/internal/market"
)

// DefaultPlaces matches the numeric(14,4) price columns.
const DefaultPlaces int32 = 4

// CloseStore remembers the last close seen per symbol. Closes are compared
// after rounding, so float noise below the stored precision is not a change.
type CloseStore struct {
	places int32

	globalMu sync.RWMutex
	data     map[string]*symbolClose
}

type symbolClose struct {
	mu    sync.Mutex
	close decimal.Decimal
}

func NewCloseStore(places int32) *CloseStore {
	if places <= 0 {
		places = DefaultPlaces
	}
	return &CloseStore{
		places: places,
		data:   make(map[string]*symbolClose),
	}
}

func (s *CloseStore) round(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(s.places)
}

func (s *CloseStore) lookup(symbol string) (*symbolClose, bool) {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()
	e, ok := s.data[symbol]
	return e, ok
}

// Changed reports whether close differs from the last stored close of symbol.
// An unseen symbol is always changed.
func (s *CloseStore) Changed(symbol string, close float64) bool {
	e, ok := s.lookup(market.Canonical(symbol))
	if !ok {
		return true
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.close.Equal(s.round(close))
}

// Set records close as the last seen value of symbol.
func (s *CloseStore) Set(symbol string, close float64) {
	symbol = market.Canonical(symbol)

	// Fast path: lock per-symbol entry only
	e, ok := s.lookup(symbol)
	if !ok {
		s.globalMu.Lock()
		if e, ok = s.data[symbol]; !ok {
			e = &symbolClose{}
			s.data[symbol] = e
		}
		s.globalMu.Unlock()
	}

	e.mu.Lock()
	e.close = s.round(close)
	e.mu.Unlock()
}

// Get returns the stored close of symbol.
func (s *CloseStore) Get(symbol string) (decimal.Decimal, bool) {
	e, ok := s.lookup(market.Canonical(symbol))
	if !ok {
		return decimal.Decimal{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.close, true
}

// Forget drops symbol, so its next close counts as a change.
func (s *CloseStore) Forget(symbol string) {
	s.globalMu.Lock()
	delete(s.data, market.Canonical(symbol))
	s.globalMu.Unlock()
}

// Symbols returns the sorted symbols with a stored close.
func (s *CloseStore) Symbols() []string {
	s.globalMu.RLock()
	out := make([]string, 0, len(s.data))
	for sym := range s.data {
		out = append(out, sym)
	}
	s.globalMu.RUnlock()

	sort.Strings(out)
	return out
}

// Len returns the number of symbols tracked.
func (s *CloseStore) Len() int {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()
	return len(s.data)
}
