package quotes

import (
	"context"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"watchstream/internal/market"
	apperrors "watchstream/pkg/errors"
)

type latestBarAPI interface {
	GetLatestBar(symbol string, req marketdata.GetLatestBarRequest) (*marketdata.Bar, error)
}

// Alpaca reads the latest minute bar from the Alpaca market data API.
type Alpaca struct {
	api  latestBarAPI
	feed marketdata.Feed
}

func NewAlpaca(api latestBarAPI, feed string) *Alpaca {
	f := marketdata.IEX // Default to IEX
	if strings.EqualFold(feed, "sip") {
		f = marketdata.SIP
	}
	return &Alpaca{api: api, feed: f}
}

// NewAlpacaClient builds the SDK client used by NewAlpaca.
func NewAlpacaClient(apiKey, apiSecret, baseURL string) *marketdata.Client {
	return marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	})
}

// FetchQuote only checks ctx before the call; the SDK takes no context.
func (a *Alpaca) FetchQuote(ctx context.Context, symbol string) (*market.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUpstreamFetch, "alpaca latest bar", err)
	}

	bar, err := a.api.GetLatestBar(symbol, marketdata.GetLatestBarRequest{Feed: a.feed})
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrCodeUpstreamFetch, err, "alpaca latest bar %s", symbol)
	}
	if bar == nil {
		return nil, apperrors.Newf(apperrors.ErrCodeUpstreamFetch, "no alpaca bar for %s", symbol)
	}

	vol := int64(bar.Volume)
	return &market.PricePoint{
		Ticker:    symbol,
		Timestamp: bar.Timestamp.UTC(),
		Open:      bar.Open,
		High:      bar.High,
		Low:       bar.Low,
		Close:     bar.Close,
		Volume:    &vol,
	}, nil
}
