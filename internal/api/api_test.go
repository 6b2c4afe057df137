package api_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"watchstream/internal/api"
	"watchstream/internal/auth"
	"watchstream/internal/market"
	"watchstream/internal/stream"
	"watchstream/pkg/storage/memory"
)

const secret = "api-secret"

type recordingBackfill struct {
	mu      sync.Mutex
	symbols []string
}

func (b *recordingBackfill) Backfill(_ context.Context, symbol string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.symbols = append(b.symbols, symbol)
	return 0, nil
}

type APISuite struct {
	suite.Suite

	store    *memory.Store
	router   *stream.Router
	backfill *recordingBackfill
	api      *api.Server
	server   *httptest.Server
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.store = memory.NewStore()
	s.router = stream.NewRouter(stream.NewRegistry(), zap.NewNop())
	s.backfill = &recordingBackfill{}

	verifier := auth.NewJWTVerifier(secret)
	handler := stream.NewHandler(verifier, s.store, s.store, s.router,
		stream.Options{Heartbeat: time.Minute, QueueSize: 16}, zap.NewNop())

	s.api = api.New(api.Deps{
		Watchlists: s.store,
		Prices:     s.store,
		Router:     s.router,
		Stream:     handler,
		Verifier:   verifier,
		Backfill:   s.backfill,
	}, api.Options{CorrelationWindow: 30, DebugRoutes: true}, zap.NewNop())

	s.server = httptest.NewServer(s.api.Handler())
}

func (s *APISuite) TearDownTest() {
	s.router.Registry().CloseAll()
	s.server.Close()
	s.api.Wait()
}

func (s *APISuite) token(id string) string {
	raw, err := auth.Issue(secret, auth.Principal{ID: id, Email: id + "@example.com"}, time.Minute)
	s.Require().NoError(err)
	return raw
}

func (s *APISuite) do(method, path, user, body string) (int, string) {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.URL+path, rd)
	s.Require().NoError(err)
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(user))
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, string(raw)
}

// go test -v --run TestAPISuite/TestHealth
func (s *APISuite) TestHealth() {
	code, body := s.do(http.MethodGet, "/health", "", "")
	s.Equal(http.StatusOK, code)
	s.JSONEq(`{"status":"OK"}`, body)
}

// go test -v --run TestAPISuite/TestRequiresToken
func (s *APISuite) TestRequiresToken() {
	for _, path := range []string{"/api/watchlists", "/api/me", "/api/stream/stats", "/api/prices/AAPL"} {
		code, _ := s.do(http.MethodGet, path, "", "")
		s.Equal(http.StatusUnauthorized, code, path)
	}
}

// go test -v --run TestAPISuite/TestWatchlistCRUD
func (s *APISuite) TestWatchlistCRUD() {
	code, body := s.do(http.MethodGet, "/api/watchlists", "U1", "")
	s.Equal(http.StatusOK, code)
	s.JSONEq(`[]`, body)

	code, body = s.do(http.MethodPost, "/api/watchlists", "U1", `{"ticker":" aapl "}`)
	s.Equal(http.StatusCreated, code)
	s.JSONEq(`{"ticker":"AAPL"}`, body)

	code, body = s.do(http.MethodPost, "/api/watchlists", "U1", `{"ticker":"AAPL"}`)
	s.Equal(http.StatusBadRequest, code)
	s.Contains(body, "Ticker already in your watchlist")

	code, _ = s.do(http.MethodPost, "/api/watchlists", "U1", `{"ticker":"RELIANCE.NS"}`)
	s.Equal(http.StatusBadRequest, code, "longer than the column")

	code, _ = s.do(http.MethodPost, "/api/watchlists", "U1", `{"ticker":"TCS.NS"}`)
	s.Equal(http.StatusCreated, code)

	code, body = s.do(http.MethodGet, "/api/watchlists", "U1", "")
	s.Equal(http.StatusOK, code)
	var entries []market.WatchlistEntry
	s.Require().NoError(json.Unmarshal([]byte(body), &entries))
	s.Require().Len(entries, 2)
	s.Equal("AAPL", entries[0].Ticker)
	s.Equal("TCS.NS", entries[1].Ticker)

	code, body = s.do(http.MethodDelete, "/api/watchlists/aapl", "U1", "")
	s.Equal(http.StatusOK, code)
	s.JSONEq(`{"removed":"AAPL"}`, body)

	code, _ = s.do(http.MethodDelete, "/api/watchlists/AAPL", "U1", "")
	s.Equal(http.StatusNotFound, code)

	s.api.Wait()
	s.backfill.mu.Lock()
	s.ElementsMatch([]string{"AAPL", "TCS.NS"}, s.backfill.symbols)
	s.backfill.mu.Unlock()
}

// go test -v --run TestAPISuite/TestInvalidTicker
func (s *APISuite) TestInvalidTicker() {
	for _, body := range []string{`{"ticker":""}`, `{"ticker":"BRK-B"}`, `{"ticker":"ABCDEFGHIJK"}`, `{"ticker":"12"}`, `not json`} {
		code, _ := s.do(http.MethodPost, "/api/watchlists", "U1", body)
		s.Equal(http.StatusBadRequest, code, body)
	}
}

// go test -v --run TestAPISuite/TestPricesAndCorrelation
func (s *APISuite) TestPricesAndCorrelation() {
	ctx := context.Background()

	code, body := s.do(http.MethodGet, "/api/analytics/corr/AAPL", "U1", "")
	s.Equal(http.StatusBadRequest, code)
	s.Contains(body, "Not enough data")

	base := time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)
	for i, c := range []float64{10, 11, 13, 12, 15} {
		s.Require().NoError(s.store.PersistPrice(ctx, market.PricePoint{
			Ticker: "AAPL", Timestamp: base.Add(time.Duration(i) * time.Minute), Open: c, High: c, Low: c, Close: c,
		}))
	}

	code, body = s.do(http.MethodGet, "/api/prices/aapl", "U1", "")
	s.Equal(http.StatusOK, code)
	var rows []map[string]any
	s.Require().NoError(json.Unmarshal([]byte(body), &rows))
	s.Require().Len(rows, 5)
	s.Equal(10.0, rows[0]["close"])
	s.Equal("2025-03-03T15:00:00Z", rows[0]["timestamp"])
	s.NotContains(rows[0], "ticker")

	code, body = s.do(http.MethodGet, "/api/analytics/corr/AAPL", "U1", "")
	s.Equal(http.StatusOK, code)
	var corr struct {
		Ticker      string  `json:"ticker"`
		Correlation float64 `json:"correlation"`
	}
	s.Require().NoError(json.Unmarshal([]byte(body), &corr))
	s.Equal("AAPL", corr.Ticker)
	s.Greater(corr.Correlation, 0.0)
}

// go test -v --run TestAPISuite/TestMeAndStats
func (s *APISuite) TestMeAndStats() {
	code, body := s.do(http.MethodGet, "/api/me", "U7", "")
	s.Equal(http.StatusOK, code)
	s.JSONEq(`{"id":"U7","email":"U7@example.com"}`, body)

	code, body = s.do(http.MethodGet, "/api/stream/stats", "U7", "")
	s.Equal(http.StatusOK, code)
	s.JSONEq(`{"connections":0}`, body)
}

func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSuffix(line, "\n")
		switch {
		case line == "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

// go test -v --run TestAPISuite/TestLiveSubscriptionChanges
func (s *APISuite) TestLiveSubscriptionChanges() {
	t := s.T()
	s.Require().NoError(s.store.AddTicker(context.Background(), "U1", "MSFT"))

	resp, err := http.Get(s.server.URL + "/api/watchlists/stream?token=" + s.token("U1"))
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	r := bufio.NewReader(resp.Body)
	event, data := readEvent(t, r)
	s.Equal("snapshot", event)
	s.JSONEq(`{"action":"snapshot","watchlist":[{"ticker":"MSFT","currentPrice":null}]}`, data)

	code, _ := s.do(http.MethodGet, "/api/stream/stats", "U1", "")
	s.Equal(http.StatusOK, code)
	s.Equal(1, s.router.CountConnections())

	code, _ = s.do(http.MethodPost, "/api/watchlists", "U1", `{"ticker":"AAPL"}`)
	s.Require().Equal(http.StatusCreated, code)

	event, data = readEvent(t, r)
	s.Equal("subscriptionUpdate", event)
	s.JSONEq(`{"tickers":["AAPL","MSFT"]}`, data)

	event, data = readEvent(t, r)
	s.Equal("direct", event)
	s.JSONEq(`{"action":"added","ticker":"AAPL"}`, data)

	// the new symbol is routed immediately
	s.Equal(1, s.router.PublishToSymbol("AAPL", stream.PricePayload{Action: stream.ActionPrice, Ticker: "AAPL", Price: 1}))
	event, _ = readEvent(t, r)
	s.Equal("price", event)

	code, _ = s.do(http.MethodDelete, "/api/watchlists/MSFT", "U1", "")
	s.Require().Equal(http.StatusOK, code)

	event, data = readEvent(t, r)
	s.Equal("subscriptionUpdate", event)
	s.JSONEq(`{"tickers":["AAPL"]}`, data)
	event, data = readEvent(t, r)
	s.Equal("direct", event)
	s.JSONEq(`{"action":"removed","ticker":"MSFT"}`, data)

	s.Equal(0, s.router.PublishToSymbol("MSFT", stream.PricePayload{Action: stream.ActionPrice, Ticker: "MSFT", Price: 1}))

	code, body := s.do(http.MethodPost, "/api/watchlists/debug/broadcast", "U1", `{"message":"hi"}`)
	s.Equal(http.StatusOK, code)
	s.JSONEq(`{"delivered":true}`, body)
	event, data = readEvent(t, r)
	s.Equal("direct", event)
	s.JSONEq(`{"message":"hi"}`, data)

	code, body = s.do(http.MethodPost, "/api/watchlists/debug/broadcast", "U2", "")
	s.Equal(http.StatusOK, code)
	s.JSONEq(`{"delivered":false}`, body)
}

// go test -v --run TestDebugRoutesDisabled
func TestDebugRoutesDisabled(t *testing.T) {
	router := stream.NewRouter(stream.NewRegistry(), zap.NewNop())
	store := memory.NewStore()
	verifier := auth.NewJWTVerifier(secret)

	srv := api.New(api.Deps{
		Watchlists: store,
		Prices:     store,
		Router:     router,
		Stream:     stream.NewHandler(verifier, store, store, router, stream.Options{QueueSize: 4}, zap.NewNop()),
		Verifier:   verifier,
	}, api.Options{}, zap.NewNop())

	raw, err := auth.Issue(secret, auth.Principal{ID: "U1"}, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/watchlists/debug/broadcast", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.NotEqual(t, http.StatusOK, rec.Code)
}

// go test -v --run TestValidTicker
func TestValidTicker(t *testing.T) {
	for ticker, want := range map[string]bool{
		"AAPL":        true,
		"TCS.NS":      true,
		"A":           true,
		"ABCDEFGHIJ":  true,
		"ABCDEFGHIJK": false,
		"aapl":        false,
		"BRK.B":       false,
		"":            false,
	} {
		assert.Equal(t, want, api.ValidTicker(ticker), ticker)
	}
}
