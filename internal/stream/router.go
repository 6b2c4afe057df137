package stream

import (
	"errors"
	"reflect"

	"go.uber.org/zap"

	"watchstream/internal/market"
	apperrors "watchstream/pkg/errors"
)

// Router delivers events to registered connections.
type Router struct {
	registry *Registry
	logger   *zap.Logger
}

func NewRouter(registry *Registry, logger *zap.Logger) *Router {
	return &Router{registry: registry, logger: logger.Named("router")}
}

func (r *Router) Registry() *Registry { return r.registry }

func (r *Router) Register(identity string, conn *Connection, symbols []string) {
	if prev := r.registry.Register(identity, conn, symbols); prev != nil {
		r.logger.Info("connection superseded",
			zap.String("user_id", identity),
			zap.Stringer("previous", prev.ID()),
			zap.Stringer("current", conn.ID()))
	}
}

func (r *Router) Unregister(identity string) {
	r.registry.Unregister(identity)
}

// CountConnections returns the number of registered identities.
func (r *Router) CountConnections() int {
	return r.registry.Count()
}

// PublishToSymbol sends a price event to every subscriber of symbol and
// returns how many connections accepted it.
func (r *Router) PublishToSymbol(symbol string, payload any) int {
	symbol = market.Canonical(symbol)
	if symbol == "" {
		r.logger.Warn("publish rejected: empty symbol")
		return 0
	}
	if !isObject(payload) {
		r.logger.Warn("publish rejected: payload is not an object",
			zap.String("symbol", symbol), zap.Any("payload", payload))
		return 0
	}

	delivered := 0
	r.registry.ForEachSubscriber(symbol, func(identity string, conn *Connection) {
		if r.deliver(identity, conn, KindPrice, payload) {
			delivered++
		}
	})
	r.logger.Debug("published", zap.String("symbol", symbol), zap.Int("delivered", delivered))
	return delivered
}

// PublishToIdentity sends a direct event. A missing identity is not an error:
// the subscriber may have disconnected in the meantime.
func (r *Router) PublishToIdentity(identity string, payload any) bool {
	return r.publishTo(identity, KindDirect, payload)
}

// PublishSnapshot sends a snapshot event, releasing any events held back
// while the connection was initializing.
func (r *Router) PublishSnapshot(identity string, payload any) bool {
	return r.publishTo(identity, KindSnapshot, payload)
}

// UpdateSymbols replaces the routing set for identity and mirrors it to the
// client as a subscriptionUpdate event.
func (r *Router) UpdateSymbols(identity string, symbols []string) bool {
	if !r.registry.UpdateSymbols(identity, symbols) {
		return false
	}
	return r.publishTo(identity, KindSubscriptionUpdate, SubscriptionPayload{Tickers: r.registry.Symbols(identity)})
}

func (r *Router) publishTo(identity string, kind Kind, payload any) bool {
	conn, ok := r.registry.Get(identity)
	if !ok {
		return false
	}
	return r.deliver(identity, conn, kind, payload)
}

func (r *Router) deliver(identity string, conn *Connection, kind Kind, payload any) bool {
	err := conn.Send(kind, payload)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrConnectionClosed):
		// torn down between lookup and send
		r.logger.Debug("dropped event for closed connection",
			zap.String("user_id", identity), zap.String("kind", string(kind)))
	case errors.Is(err, ErrQueueFull):
		r.logger.Warn("dropped event for slow connection",
			zap.String("user_id", identity), zap.String("kind", string(kind)))
	case apperrors.HasCode(err, apperrors.ErrCodeEncoding):
		r.logger.Error("event encoding failed",
			zap.String("user_id", identity), zap.String("kind", string(kind)), zap.Error(err))
	default:
		r.logger.Error("event delivery failed",
			zap.String("user_id", identity), zap.String("kind", string(kind)), zap.Error(err))
	}
	return false
}

func isObject(payload any) bool {
	if payload == nil {
		return false
	}
	v := reflect.ValueOf(payload)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		return !v.IsNil()
	case reflect.Struct:
		return true
	}
	return false
}
