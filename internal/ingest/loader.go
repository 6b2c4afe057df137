package ingest

import (
	"context"

	"go.uber.org/zap"

	"watchstream/internal/market"
)

// SymbolLoader streams the distinct watched symbols of all users.
type SymbolLoader struct {
	Watchlists market.WatchlistStore
	Logger     *zap.Logger
}

// LoadSymbols reads the distinct watched symbols and streams them into ch.
// ch is closed when the function returns.
func (l *SymbolLoader) LoadSymbols(ctx context.Context, ch chan<- string) error {
	defer close(ch) // Ensure downstream consumers can exit cleanly

	symbols, err := l.Watchlists.DistinctWatchedSymbols(ctx)
	if err != nil {
		l.Logger.Error("failed to load watched symbols", zap.Error(err))
		return err
	}
	symbols = market.CanonicalAll(symbols)
	l.Logger.Debug("loaded symbols", zap.Int("count", len(symbols)))

	for _, symbol := range symbols {
		select {
		case ch <- symbol:
		case <-ctx.Done():
			l.Logger.Warn("symbol streaming interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		}
	}
	return nil
}
