package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrUnknownSymbol is returned when Finnhub has no data for a symbol.
var ErrUnknownSymbol = errors.New("finnhub: unknown symbol")

type RESTClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewRESTClient(baseURL, apiKey string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RESTClient) HTTPClient() *http.Client {
	return c.httpClient
}

// GetQuote fetches the real-time quote of symbol.
func (c *RESTClient) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	var q Quote
	if err := c.get(ctx, "/quote", url.Values{"symbol": {symbol}}, &q); err != nil {
		return Quote{}, err
	}

	// Finnhub answers unknown symbols with 200 and zeros
	if q.Current == 0 && q.Time == 0 {
		return Quote{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return q, nil
}

// GetCandles fetches bars of symbol between from and to.
func (c *RESTClient) GetCandles(ctx context.Context, symbol string, resolution Resolution,
	from, to time.Time) ([]Candle, error) {
	params := url.Values{
		"symbol":     {symbol},
		"resolution": {string(resolution)},
		"from":       {strconv.FormatInt(from.Unix(), 10)},
		"to":         {strconv.FormatInt(to.Unix(), 10)},
	}

	var resp CandleResponse
	if err := c.get(ctx, "/stock/candle", params, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case "ok":
		return ParseCandles(resp), nil
	case "no_data":
		return nil, nil
	default:
		return nil, fmt.Errorf("finnhub candle status: %q", resp.Status)
	}
}

func (c *RESTClient) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("token", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	// Execute the HTTP request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	// Check HTTP status code
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("finnhub error (%d): %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("finnhub error (%d): %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
