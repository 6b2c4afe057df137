package quotes

import (
	"context"
	"errors"
	"time"

	"watchstream/internal/market"
	apperrors "watchstream/pkg/errors"
	"watchstream/pkg/finnhub"
)

type finnhubAPI interface {
	GetQuote(ctx context.Context, symbol string) (finnhub.Quote, error)
	GetCandles(ctx context.Context, symbol string, resolution finnhub.Resolution, from, to time.Time) ([]finnhub.Candle, error)
}

// Finnhub reads the real-time quote endpoint. It reports no volume.
type Finnhub struct {
	api finnhubAPI
}

func NewFinnhub(api finnhubAPI) *Finnhub {
	return &Finnhub{api: api}
}

func (f *Finnhub) FetchQuote(ctx context.Context, symbol string) (*market.PricePoint, error) {
	q, err := f.api.GetQuote(ctx, symbol)
	if err != nil {
		if errors.Is(err, finnhub.ErrUnknownSymbol) {
			return nil, apperrors.Wrapf(apperrors.ErrCodeUpstreamFetch, err, "no finnhub data for %s", symbol)
		}
		return nil, apperrors.Wrapf(apperrors.ErrCodeUpstreamFetch, err, "finnhub quote %s", symbol)
	}

	return &market.PricePoint{
		Ticker:    symbol,
		Timestamp: time.Unix(q.Time, 0).UTC(),
		Open:      q.Open,
		High:      q.High,
		Low:       q.Low,
		Close:     q.Current,
	}, nil
}

// FetchCandles returns 5-minute bars of symbol between from and to, oldest first.
func (f *Finnhub) FetchCandles(ctx context.Context, symbol string, from, to time.Time) ([]market.PricePoint, error) {
	candles, err := f.api.GetCandles(ctx, symbol, finnhub.Resolution5Min, from, to)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrCodeUpstreamFetch, err, "finnhub candles %s", symbol)
	}

	out := make([]market.PricePoint, 0, len(candles))
	for _, c := range candles {
		vol := c.Volume
		out = append(out, market.PricePoint{
			Ticker:    symbol,
			Timestamp: c.Time,
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    &vol,
		})
	}
	return out, nil
}
