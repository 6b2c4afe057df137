package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"watchstream/config"
	"watchstream/internal/api"
	"watchstream/internal/auth"
	"watchstream/internal/ingest"
	"watchstream/internal/market"
	"watchstream/internal/memorystore"
	"watchstream/internal/quotes"
	"watchstream/internal/stream"
	"watchstream/pkg/storage/memory"
	"watchstream/pkg/storage/postgres"
	"watchstream/pkg/storage/rediscache"
)

// App holds the wired components of one running process.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	Watchlists market.WatchlistStore
	Prices     market.PriceStore
	Router     *stream.Router
	Poller     *ingest.Poller

	api        *api.Server
	httpServer *http.Server
	closers    []func() error
}

// Build opens the stores and wires every component. Close releases what
// Build opened; Serve does that itself on return.
func Build(ctx context.Context, cfg *config.Config, createDB bool, logger *zap.Logger) (*App, error) {
	app := &App{cfg: cfg, logger: logger}

	if err := app.openStores(ctx, createDB); err != nil {
		app.Close()
		return nil, err
	}

	fetcher, err := quotes.New(cfg.Quotes)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Router = stream.NewRouter(stream.NewRegistry(), logger)
	verifier := auth.NewJWTVerifier(cfg.Auth.JWTSecret)

	handler := stream.NewHandler(verifier, app.Watchlists, app.Prices, app.Router, stream.Options{
		Heartbeat:      cfg.Stream.Heartbeat,
		QueueSize:      cfg.Stream.QueueSize,
		WriteTimeout:   cfg.Stream.WriteTimeout,
		InitTimeout:    cfg.Stream.InitTimeout,
		SendConnected:  cfg.Stream.SendConnected,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, logger)

	deps := api.Deps{
		Watchlists: app.Watchlists,
		Prices:     app.Prices,
		Router:     app.Router,
		Stream:     handler,
		Verifier:   verifier,
	}
	if candles, ok := quotes.CandlesFor(fetcher); ok {
		deps.Backfill = quotes.NewBackfiller(candles, app.Prices, logger)
	}
	app.api = api.New(deps, api.Options{
		CorrelationWindow: cfg.Storage.CorrelationWindow,
		DebugRoutes:       cfg.Server.DebugRoutes,
	}, logger)

	app.Poller = ingest.NewPoller(app.Watchlists, fetcher, app.Prices,
		memorystore.NewCloseStore(memorystore.DefaultPlaces), app.Router, ingest.Options{
			Concurrency:    cfg.Ingest.Concurrency,
			FetchTimeout:   cfg.Ingest.FetchTimeout,
			PersistTimeout: cfg.Ingest.PersistTimeout,
		}, logger)

	// no WriteTimeout: it would cut long-lived streams
	app.httpServer = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.api.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}
	// Shutdown does not cancel request contexts, so open streams are ended here.
	app.httpServer.RegisterOnShutdown(func() {
		n := app.Router.Registry().CloseAll()
		logger.Info("closed stream connections", zap.Int("count", n))
	})

	return app, nil
}

func (a *App) openStores(ctx context.Context, createDB bool) error {
	var prices market.PriceStore

	switch a.cfg.Storage.Driver {
	case "memory":
		store := memory.NewStore()
		a.Watchlists, prices = store, store
		a.logger.Warn("using in-memory storage; data is lost on exit")
	case "postgres":
		client, err := postgres.Initialize(a.cfg.Postgres, a.cfg.Env, a.cfg.SSM, createDB)
		if err != nil {
			return fmt.Errorf("failed to connect to DB: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		a.Watchlists, prices = client, client
	default:
		return fmt.Errorf("unknown storage driver: %q", a.cfg.Storage.Driver)
	}

	if a.cfg.Redis.Enabled {
		cache, err := rediscache.Dial(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB, a.cfg.Redis.TTL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, cache.Close)
		prices = market.NewCachedPriceStore(prices, cache, a.logger.Named("cache"))
	}

	a.Prices = prices
	return nil
}

// Handler exposes the route table, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Serve accepts on ln until ctx is cancelled, then shuts down: ingestion
// stops first, then the HTTP server, then open streams and the stores.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	defer a.Close()

	ingestCtx, stopIngest := context.WithCancel(ctx)
	defer stopIngest()

	var ingestDone <-chan struct{}
	if a.cfg.Ingest.Enabled {
		scheduler := &ingest.Scheduler{
			Interval: a.cfg.Ingest.Interval,
			Job:      func(ctx context.Context) { a.Poller.RunOnce(ctx) },
		}
		ingestDone = scheduler.Start(ingestCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
	case serveErr = <-errCh:
		a.logger.Error("http server failed", zap.Error(serveErr))
	}

	stopIngest()
	if ingestDone != nil {
		<-ingestDone
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown", zap.Error(err))
	}
	a.Router.Registry().CloseAll()
	a.api.Wait()

	return serveErr
}

// Close releases the stores. Safe to call more than once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close", zap.Error(err))
		}
	}
	a.closers = nil
}

// Run builds the app and serves on cfg.Server.Addr until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, createDB bool, logger *zap.Logger) error {
	app, err := Build(ctx, cfg, createDB, logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		app.Close()
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}
	return app.Serve(ctx, ln)
}
