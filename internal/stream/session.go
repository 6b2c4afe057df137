package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	apperrors "watchstream/pkg/errors"
)

const DefaultHeartbeat = 15 * time.Second

// State is the lifecycle position of a Session. Authentication happens before
// a session exists, so a rejected client never gets one.
type State int32

const (
	StateInitializing State = iota
	StateStreaming
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Transport performs the blocking writes for one session. Only the session
// goroutine calls WriteFrame and Close.
type Transport interface {
	WriteFrame(Frame) error
	// Gone is closed when the peer disconnects.
	Gone() <-chan struct{}
	Close() error
}

// Ticker is the part of time.Ticker a Session uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.Ticker.C }

func NewTimeTicker(d time.Duration) Ticker { return timeTicker{time.NewTicker(d)} }

// Session drives one authenticated subscriber stream through
// initializing -> streaming -> closed.
type Session struct {
	identity  string
	conn      *Connection
	transport Transport
	router    *Router
	logger    *zap.Logger

	heartbeat     time.Duration
	newTicker     func(time.Duration) Ticker
	sendConnected bool

	state     atomic.Int32
	closeOnce sync.Once
}

type SessionOption func(*Session)

func WithHeartbeat(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.heartbeat = d
		}
	}
}

func WithTicker(fn func(time.Duration) Ticker) SessionOption {
	return func(s *Session) { s.newTicker = fn }
}

// WithConnectedEvent makes Start emit a connected event before the snapshot.
func WithConnectedEvent(on bool) SessionOption {
	return func(s *Session) { s.sendConnected = on }
}

// NewSession creates a session for an already authenticated identity.
func NewSession(identity string, conn *Connection, transport Transport, router *Router, logger *zap.Logger, opts ...SessionOption) *Session {
	s := &Session{
		identity:  identity,
		conn:      conn,
		transport: transport,
		router:    router,
		logger: logger.Named("session").With(
			zap.String("user_id", identity),
			zap.Stringer("conn_id", conn.ID())),
		heartbeat: DefaultHeartbeat,
		newTicker: NewTimeTicker,
	}
	s.state.Store(int32(StateInitializing))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) Connection() *Connection { return s.conn }

// Start registers the connection for symbols and queues the opening events.
// The snapshot is always the first event the client can act on. If it cannot
// be queued the session is closed and Run must not be called.
func (s *Session) Start(symbols []string, snapshot SnapshotPayload) error {
	s.router.Register(s.identity, s.conn, symbols)
	if s.sendConnected {
		s.router.deliver(s.identity, s.conn, KindConnected, ConnectedPayload{
			UserID:  s.identity,
			Tickers: s.router.Registry().Symbols(s.identity),
		})
	}
	if err := s.conn.Send(KindSnapshot, snapshot); err != nil {
		s.logger.Error("snapshot not queued", zap.Error(err))
		s.Close("snapshot failed")
		return apperrors.Wrap(apperrors.ErrCodeDelivery, "queue snapshot", err)
	}
	s.state.Store(int32(StateStreaming))
	s.logger.Info("stream opened", zap.Int("symbols", len(symbols)))
	return nil
}

// Run writes queued frames and heartbeats until the peer leaves, the
// connection is closed elsewhere or ctx is done. It always ends closed.
func (s *Session) Run(ctx context.Context) {
	tick := s.newTicker(s.heartbeat)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			// an SSE request context also ends when the client leaves
			select {
			case <-s.transport.Gone():
				s.Close("client disconnected")
			default:
				s.Close("server shutdown")
			}
			return
		case <-s.transport.Gone():
			s.Close("client disconnected")
			return
		case <-s.conn.Done():
			s.drain()
			s.Close("connection closed")
			return
		case f := <-s.conn.Queue():
			if err := s.transport.WriteFrame(f); err != nil {
				s.logger.Warn("write failed", zap.Error(err))
				s.Close("write failed")
				return
			}
		case <-tick.C():
			s.router.deliver(s.identity, s.conn, KindPing, struct{}{})
		}
	}
}

// drain flushes frames that were queued before the connection was closed.
func (s *Session) drain() {
	for {
		select {
		case f := <-s.conn.Queue():
			if err := s.transport.WriteFrame(f); err != nil {
				return
			}
		default:
			return
		}
	}
}

// Close tears the session down. Calling it more than once is harmless.
func (s *Session) Close(reason string) {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		s.conn.Close()
		removed := s.router.Registry().Release(s.identity, s.conn)
		if err := s.transport.Close(); err != nil {
			s.logger.Debug("transport close", zap.Error(err))
		}
		s.logger.Info("stream closed",
			zap.String("reason", reason),
			zap.Bool("unregistered", removed),
			zap.Int64("events", s.conn.Sent()),
			zap.Duration("open_for", time.Since(s.conn.OpenedAt())))
	})
}
