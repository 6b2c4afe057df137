package quotes

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"watchstream/internal/market"
	apperrors "watchstream/pkg/errors"
)

type previousCloseAPI interface {
	GetPreviousCloseAgg(ctx context.Context, params *models.GetPreviousCloseAggParams,
		opts ...models.RequestOption) (*models.GetPreviousCloseAggResponse, error)
}

// Polygon reads the previous-day aggregate. It suits free-tier keys, where
// only end-of-day data is available.
type Polygon struct {
	api previousCloseAPI
}

func NewPolygon(api previousCloseAPI) *Polygon {
	return &Polygon{api: api}
}

// NewPolygonClient builds the SDK client used by NewPolygon.
func NewPolygonClient(apiKey string) *polygon.Client {
	return polygon.New(apiKey)
}

func (p *Polygon) FetchQuote(ctx context.Context, symbol string) (*market.PricePoint, error) {
	resp, err := p.api.GetPreviousCloseAgg(ctx, &models.GetPreviousCloseAggParams{Ticker: symbol})
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrCodeUpstreamFetch, err, "polygon previous close %s", symbol)
	}
	if resp == nil || len(resp.Results) == 0 {
		return nil, apperrors.Newf(apperrors.ErrCodeUpstreamFetch, "no polygon aggregate for %s", symbol)
	}

	agg := resp.Results[0]
	vol := int64(agg.Volume)
	return &market.PricePoint{
		Ticker:    symbol,
		Timestamp: time.Time(agg.Timestamp).UTC(),
		Open:      agg.Open,
		High:      agg.High,
		Low:       agg.Low,
		Close:     agg.Close,
		Volume:    &vol,
	}, nil
}
