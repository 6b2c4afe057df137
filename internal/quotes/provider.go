package quotes

import (
	"fmt"

	"watchstream/config"
	"watchstream/internal/market"
	"watchstream/pkg/finnhub"
)

// New returns the quote fetcher selected by cfg.Provider.
func New(cfg config.QuotesConfig) (market.QuoteFetcher, error) {
	switch cfg.Provider {
	case "finnhub":
		return NewFinnhub(finnhub.NewRESTClient(cfg.Finnhub.BaseURL, cfg.Finnhub.APIKey, cfg.Finnhub.Timeout)), nil
	case "alpaca":
		return NewAlpaca(NewAlpacaClient(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL), cfg.Alpaca.Feed), nil
	case "polygon":
		return NewPolygon(NewPolygonClient(cfg.Polygon.APIKey)), nil
	default:
		return nil, fmt.Errorf("unknown quote provider: %q", cfg.Provider)
	}
}
