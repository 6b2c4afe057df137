package market

import (
	"context"

	"go.uber.org/zap"
)

// LatestCache is a best-effort mirror of the newest price per symbol.
type LatestCache interface {
	GetLatest(ctx context.Context, symbol string) (*PricePoint, error)
	SetLatest(ctx context.Context, p PricePoint) error
}

// CachedPriceStore reads the latest price through a LatestCache and writes it
// back after every successful persist. Cache failures never fail the call.
type CachedPriceStore struct {
	PriceStore
	cache  LatestCache
	logger *zap.Logger
}

func NewCachedPriceStore(store PriceStore, cache LatestCache, logger *zap.Logger) *CachedPriceStore {
	return &CachedPriceStore{PriceStore: store, cache: cache, logger: logger}
}

func (s *CachedPriceStore) LatestPrice(ctx context.Context, symbol string) (*PricePoint, error) {
	symbol = Canonical(symbol)

	p, err := s.cache.GetLatest(ctx, symbol)
	if err != nil {
		s.logger.Warn("latest price cache read failed", zap.String("symbol", symbol), zap.Error(err))
	} else if p != nil {
		return p, nil
	}

	p, err = s.PriceStore.LatestPrice(ctx, symbol)
	if err != nil || p == nil {
		return p, err
	}
	if err := s.cache.SetLatest(ctx, *p); err != nil {
		s.logger.Warn("latest price cache fill failed", zap.String("symbol", symbol), zap.Error(err))
	}
	return p, nil
}

func (s *CachedPriceStore) PersistPrice(ctx context.Context, p PricePoint) error {
	if err := s.PriceStore.PersistPrice(ctx, p); err != nil {
		return err
	}
	if err := s.cache.SetLatest(ctx, p); err != nil {
		s.logger.Warn("latest price cache write failed", zap.String("symbol", p.Ticker), zap.Error(err))
	}
	return nil
}
