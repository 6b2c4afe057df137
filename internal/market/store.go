package market

import "context"

//go:generate mockgen -source=store.go -destination=../../mocks/mock_market.go -package=mocks

// WatchlistStore holds watchlist membership per user.
type WatchlistStore interface {
	WatchlistSymbols(ctx context.Context, userID string) ([]string, error)
	DistinctWatchedSymbols(ctx context.Context) ([]string, error)
	ListWatchlist(ctx context.Context, userID string) ([]WatchlistEntry, error)
	// AddTicker fails with an ErrCodeConflict error when the ticker is already present.
	AddTicker(ctx context.Context, userID, ticker string) error
	// RemoveTicker fails with an ErrCodeNotFound error when the ticker is absent.
	RemoveTicker(ctx context.Context, userID, ticker string) error
}

// PriceStore holds the price history rows.
type PriceStore interface {
	// LatestPrice returns nil, nil when no row exists for symbol.
	LatestPrice(ctx context.Context, symbol string) (*PricePoint, error)
	PersistPrice(ctx context.Context, p PricePoint) error
	PriceHistory(ctx context.Context, symbol string) ([]PricePoint, error)
	// CloseCorrelation returns Pearson r between close and its moving average
	// over window rows, rounded to 4 places. ErrCodeInsufficientData when
	// fewer than two pairs exist.
	CloseCorrelation(ctx context.Context, symbol string, window int) (float64, error)
}

// QuoteFetcher asks an upstream source for the latest quote of a symbol.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*PricePoint, error)
}
