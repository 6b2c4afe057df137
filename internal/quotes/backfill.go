package quotes

import (
	"context"
	"time"

	"go.uber.org/zap"

	"watchstream/internal/market"
)

// CandleFetcher is implemented by providers that can return recent bars.
type CandleFetcher interface {
	FetchCandles(ctx context.Context, symbol string, from, to time.Time) ([]market.PricePoint, error)
}

// Backfiller seeds the price history of a newly watched symbol with the
// last day of bars, so history and analytics have data before the first
// polling cycles.
type Backfiller struct {
	candles CandleFetcher
	prices  market.PriceStore
	window  time.Duration
	logger  *zap.Logger
}

func NewBackfiller(candles CandleFetcher, prices market.PriceStore, logger *zap.Logger) *Backfiller {
	return &Backfiller{
		candles: candles,
		prices:  prices,
		window:  24 * time.Hour,
		logger:  logger.Named("backfill"),
	}
}

// Backfill stores recent bars for symbol unless it already has history.
// It returns the number of rows written.
func (b *Backfiller) Backfill(ctx context.Context, symbol string) (int, error) {
	symbol = market.Canonical(symbol)

	latest, err := b.prices.LatestPrice(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if latest != nil {
		return 0, nil
	}

	to := time.Now()
	bars, err := b.candles.FetchCandles(ctx, symbol, to.Add(-b.window), to)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, bar := range bars {
		if err := b.prices.PersistPrice(ctx, bar); err != nil {
			b.logger.Warn("failed to store bar", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		written++
	}
	b.logger.Info("backfilled", zap.String("symbol", symbol), zap.Int("rows", written))
	return written, nil
}

// CandlesFor returns the candle source of fetcher, if it has one.
func CandlesFor(fetcher market.QuoteFetcher) (CandleFetcher, bool) {
	c, ok := fetcher.(CandleFetcher)
	return c, ok
}
