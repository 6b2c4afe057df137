package ingest

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"watchstream/internal/market"
	"watchstream/internal/memorystore"
	"watchstream/internal/stream"
	apperrors "watchstream/pkg/errors"
)

//go:generate mockgen -source=poller.go -destination=../../mocks/mock_ingest.go -package=mocks

// Publisher fans a price payload out to the subscribers of symbol.
type Publisher interface {
	PublishToSymbol(symbol string, payload any) int
}

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Options struct {
	Concurrency    int
	FetchTimeout   time.Duration
	PersistTimeout time.Duration
}

// CycleStats summarizes one polling cycle.
type CycleStats struct {
	Checked   int
	Changed   int
	Unchanged int
	Failed    int
	Delivered int
}

type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeChanged
	outcomeFailed
)

// Poller fetches the latest quote of every watched symbol and broadcasts the
// closes that moved. A price is broadcast only after it has been persisted.
type Poller struct {
	loader    *SymbolLoader
	fetcher   market.QuoteFetcher
	prices    market.PriceStore
	closes    *memorystore.CloseStore
	publisher Publisher
	opts      Options
	logger    *zap.Logger
}

func NewPoller(watchlists market.WatchlistStore, fetcher market.QuoteFetcher, prices market.PriceStore,
	closes *memorystore.CloseStore, publisher Publisher, opts Options, logger *zap.Logger) *Poller {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	logger = logger.Named("ingest")
	return &Poller{
		loader:    &SymbolLoader{Watchlists: watchlists, Logger: logger},
		fetcher:   fetcher,
		prices:    prices,
		closes:    closes,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
	}
}

// RunOnce performs a single cycle. Failures are contained per symbol.
func (p *Poller) RunOnce(ctx context.Context) CycleStats {
	start := time.Now()

	symbolCh := make(chan string, 100)
	loadErr := make(chan error, 1)
	go func() {
		// errors are logged by the loader; an empty cycle follows
		loadErr <- p.loader.LoadSymbols(ctx, symbolCh)
	}()

	var (
		mu    sync.Mutex
		stats CycleStats
		wg    sync.WaitGroup
	)
	sem := make(chan struct{}, p.opts.Concurrency)
	watched := make(map[string]struct{})

	for symbol := range symbolCh {
		watched[symbol] = struct{}{}
		sem <- struct{}{}
		wg.Add(1)

		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()

			res, delivered := p.process(ctx, symbol)

			mu.Lock()
			defer mu.Unlock()
			stats.Checked++
			stats.Delivered += delivered
			switch res {
			case outcomeChanged:
				stats.Changed++
			case outcomeUnchanged:
				stats.Unchanged++
			case outcomeFailed:
				stats.Failed++
			}
		}()
	}
	wg.Wait()

	pruned := 0
	if err := <-loadErr; err == nil {
		pruned = p.forgetUnwatched(watched)
	}

	p.logger.Info("ingest cycle finished",
		zap.Int("checked", stats.Checked),
		zap.Int("changed", stats.Changed),
		zap.Int("unchanged", stats.Unchanged),
		zap.Int("failed", stats.Failed),
		zap.Int("delivered", stats.Delivered),
		zap.Int("pruned", pruned),
		zap.Int("tracked", p.closes.Len()),
		zap.Duration("took", time.Since(start)))
	return stats
}

// forgetUnwatched drops cached closes of symbols nobody watches anymore.
// A symbol that comes back is treated as unseen.
func (p *Poller) forgetUnwatched(watched map[string]struct{}) int {
	n := 0
	for _, symbol := range p.closes.Symbols() {
		if _, ok := watched[symbol]; !ok {
			p.closes.Forget(symbol)
			n++
		}
	}
	return n
}

func (p *Poller) process(ctx context.Context, symbol string) (outcome, int) {
	// Step 1: fetch the latest quote
	quote, err := p.fetch(ctx, symbol)
	if err != nil {
		p.logger.Warn("quote fetch failed", zap.String("symbol", symbol), zap.Error(err))
		return outcomeFailed, 0
	}
	quote.Ticker = symbol

	// Step 2: skip closes that have not moved
	if !p.changed(ctx, symbol, quote.Close) {
		return outcomeUnchanged, 0
	}

	// Step 3: persist, then remember and broadcast
	if err := p.persist(ctx, *quote); err != nil {
		// cache untouched, so the next cycle retries
		p.logger.Warn("price persist failed", zap.String("symbol", symbol), zap.Error(err))
		return outcomeFailed, 0
	}
	p.closes.Set(symbol, quote.Close)

	delivered := p.publisher.PublishToSymbol(symbol, PricePayload(*quote))
	p.logger.Debug("price changed",
		zap.String("symbol", symbol),
		zap.Float64("close", quote.Close),
		zap.Int("delivered", delivered))
	return outcomeChanged, delivered
}

func (p *Poller) fetch(ctx context.Context, symbol string) (*market.PricePoint, error) {
	if p.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.FetchTimeout)
		defer cancel()
	}

	quote, err := p.fetcher.FetchQuote(ctx, symbol)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeUpstreamFetch) {
			return nil, err
		}
		return nil, apperrors.Wrapf(apperrors.ErrCodeUpstreamFetch, err, "fetch %s", symbol)
	}
	if quote == nil {
		return nil, apperrors.Newf(apperrors.ErrCodeUpstreamFetch, "no quote for %s", symbol)
	}
	if quote.Timestamp.IsZero() {
		quote.Timestamp = time.Now().UTC()
	}
	return quote, nil
}

// changed consults the close cache. On a miss it seeds the cache from the
// newest stored row, so a restart does not persist the same close again.
func (p *Poller) changed(ctx context.Context, symbol string, close float64) bool {
	if _, seen := p.closes.Get(symbol); !seen {
		latest, err := p.prices.LatestPrice(ctx, symbol)
		if err != nil {
			p.logger.Debug("latest price lookup failed", zap.String("symbol", symbol), zap.Error(err))
		} else if latest != nil {
			p.closes.Set(symbol, latest.Close)
		}
	}
	return p.closes.Changed(symbol, close)
}

func (p *Poller) persist(ctx context.Context, quote market.PricePoint) error {
	if p.opts.PersistTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.PersistTimeout)
		defer cancel()
	}

	if err := p.prices.PersistPrice(ctx, quote); err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodePersistence) {
			return err
		}
		return apperrors.Wrapf(apperrors.ErrCodePersistence, err, "persist %s", quote.Ticker)
	}
	return nil
}

// PricePayload builds the price event body for q.
func PricePayload(q market.PricePoint) stream.PricePayload {
	return stream.PricePayload{
		Action:    stream.ActionPrice,
		Ticker:    q.Ticker,
		Price:     q.Close,
		Timestamp: q.Timestamp.UTC().Format(timestampLayout),
	}
}
