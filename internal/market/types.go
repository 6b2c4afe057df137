package market

import (
	"strings"
	"time"
)

// PricePoint is one OHLC observation for a ticker. Volume is nil when the
// upstream does not report it (the Finnhub quote endpoint never does).
type PricePoint struct {
	Ticker    string    `json:"ticker"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    *int64    `json:"volume,omitempty"`
}

// WatchlistEntry is one row of a user's watchlist.
type WatchlistEntry struct {
	Ticker    string    `json:"ticker"`
	CreatedAt time.Time `json:"created_at"`
}

// Canonical returns the upper-case, trimmed form used for storage and routing.
func Canonical(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// CanonicalAll canonicalizes symbols, dropping blanks and duplicates while
// keeping the first-seen order.
func CanonicalAll(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		c := Canonical(s)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
