package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"watchstream/internal/auth"
	"watchstream/internal/market"
	apperrors "watchstream/pkg/errors"
)

// Options tunes the stream endpoints.
type Options struct {
	Heartbeat      time.Duration
	QueueSize      int
	WriteTimeout   time.Duration
	InitTimeout    time.Duration
	SendConnected  bool
	AllowedOrigins []string
}

// Handler serves the SSE and websocket stream endpoints.
type Handler struct {
	verifier   auth.Verifier
	watchlists market.WatchlistStore
	prices     market.PriceStore
	router     *Router
	opts       Options
	upgrader   websocket.Upgrader
	logger     *zap.Logger

	sessionOpts []SessionOption
}

func NewHandler(verifier auth.Verifier, watchlists market.WatchlistStore, prices market.PriceStore,
	router *Router, opts Options, logger *zap.Logger, sessionOpts ...SessionOption) *Handler {
	h := &Handler{
		verifier:    verifier,
		watchlists:  watchlists,
		prices:      prices,
		router:      router,
		opts:        opts,
		logger:      logger.Named("stream"),
		sessionOpts: sessionOpts,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(h.opts.AllowedOrigins, r.Header.Get("Origin"))
}

// ServeSSE opens an event-stream for the authenticated user.
func (h *Handler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	identity, symbols, snapshot, ok := h.prepare(w, r)
	if !ok {
		return
	}

	t, err := NewSSETransport(w, r, h.opts.WriteTimeout)
	if err != nil {
		h.logger.Error("open event stream", zap.String("user_id", identity), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	h.serve(r.Context(), identity, t, symbols, snapshot)
}

// ServeWebSocket is the websocket flavour of ServeSSE. Authentication and the
// initial store reads happen before the upgrade so failures stay plain HTTP.
func (h *Handler) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	identity, symbols, snapshot, ok := h.prepare(w, r)
	if !ok {
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Warn("websocket upgrade failed", zap.String("user_id", identity), zap.Error(err))
		return
	}
	h.serve(r.Context(), identity, NewWSTransport(ws, h.opts.WriteTimeout), symbols, snapshot)
}

func (h *Handler) prepare(w http.ResponseWriter, r *http.Request) (string, []string, SnapshotPayload, bool) {
	p, err := h.verifier.Verify(r.Context(), auth.ExtractToken(r))
	if err != nil {
		h.logger.Debug("stream rejected", zap.Error(err))
		auth.Unauthorized(w, err)
		return "", nil, SnapshotPayload{}, false
	}

	ctx := r.Context()
	if h.opts.InitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.InitTimeout)
		defer cancel()
	}

	symbols, snapshot, err := BuildSnapshot(ctx, h.watchlists, h.prices, p.ID)
	if err != nil {
		h.logger.Error("load watchlist", zap.String("user_id", p.ID), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "failed to load watchlist")
		return "", nil, SnapshotPayload{}, false
	}
	return p.ID, symbols, snapshot, true
}

func (h *Handler) serve(ctx context.Context, identity string, t Transport, symbols []string, snapshot SnapshotPayload) {
	opts := append([]SessionOption{
		WithHeartbeat(h.opts.Heartbeat),
		WithConnectedEvent(h.opts.SendConnected),
	}, h.sessionOpts...)

	s := NewSession(identity, NewConnection(identity, h.opts.QueueSize), t, h.router, h.logger, opts...)
	if err := s.Start(symbols, snapshot); err != nil {
		return
	}
	s.Run(ctx)
}

// BuildSnapshot reads the watchlist of identity and the latest stored close
// of each symbol. Symbols without a stored price get a null currentPrice.
func BuildSnapshot(ctx context.Context, watchlists market.WatchlistStore, prices market.PriceStore, identity string) ([]string, SnapshotPayload, error) {
	symbols, err := watchlists.WatchlistSymbols(ctx, identity)
	if err != nil {
		return nil, SnapshotPayload{}, apperrors.Wrap(apperrors.ErrCodePersistence, "read watchlist", err)
	}
	symbols = market.CanonicalAll(symbols)

	items := make([]SnapshotItem, 0, len(symbols))
	for _, sym := range symbols {
		p, err := prices.LatestPrice(ctx, sym)
		if err != nil {
			return nil, SnapshotPayload{}, apperrors.Wrapf(apperrors.ErrCodePersistence, err, "latest price for %s", sym)
		}
		item := SnapshotItem{Ticker: sym}
		if p != nil {
			c := p.Close
			item.CurrentPrice = &c
		}
		items = append(items, item)
	}
	return symbols, SnapshotPayload{Action: ActionSnapshot, Watchlist: items}, nil
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
