package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"watchstream/internal/auth"
	"watchstream/internal/market"
	"watchstream/internal/stream"
)

const backfillTimeout = 30 * time.Second

// Backfiller seeds history for a symbol that was just added to a watchlist.
type Backfiller interface {
	Backfill(ctx context.Context, symbol string) (int, error)
}

type Deps struct {
	Watchlists market.WatchlistStore
	Prices     market.PriceStore
	Router     *stream.Router
	Stream     *stream.Handler
	Verifier   auth.Verifier
	// optional
	Backfill Backfiller
}

type Options struct {
	CorrelationWindow int
	DebugRoutes       bool
}

// Server exposes the watchlist REST routes and mounts the stream endpoints.
type Server struct {
	deps   Deps
	opts   Options
	logger *zap.Logger

	background sync.WaitGroup
}

func New(deps Deps, opts Options, logger *zap.Logger) *Server {
	if opts.CorrelationWindow < 2 {
		opts.CorrelationWindow = 30
	}
	return &Server{deps: deps, opts: opts, logger: logger.Named("api")}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// stream endpoints authenticate themselves
	api.HandleFunc("/watchlists/stream", s.deps.Stream.ServeSSE).Methods(http.MethodGet)
	api.HandleFunc("/watchlists/ws", s.deps.Stream.ServeWebSocket).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(auth.Middleware(s.deps.Verifier))

	authed.HandleFunc("/watchlists", s.listWatchlistHandler).Methods(http.MethodGet)
	authed.HandleFunc("/watchlists", s.addTickerHandler).Methods(http.MethodPost)
	if s.opts.DebugRoutes {
		authed.HandleFunc("/watchlists/debug/broadcast", s.debugBroadcastHandler).Methods(http.MethodPost)
	}
	authed.HandleFunc("/watchlists/{ticker}", s.removeTickerHandler).Methods(http.MethodDelete)

	authed.HandleFunc("/prices/{ticker}", s.priceHistoryHandler).Methods(http.MethodGet)
	authed.HandleFunc("/analytics/corr/{ticker}", s.correlationHandler).Methods(http.MethodGet)

	authed.HandleFunc("/me", s.meHandler).Methods(http.MethodGet)
	authed.HandleFunc("/stream/stats", s.statsHandler).Methods(http.MethodGet)

	return router
}

// Wait blocks until background backfills have finished.
func (s *Server) Wait() {
	s.background.Wait()
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"id": p.ID, "email": p.Email})
}

func (s *Server) statsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"connections": s.deps.Router.CountConnections()})
}
