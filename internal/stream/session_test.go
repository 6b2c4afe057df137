package stream_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"watchstream/internal/stream"
)

type sessionHarness struct {
	router    *stream.Router
	transport *fakeTransport
	ticker    *manualTicker
	session   *stream.Session
	done      chan struct{}
}

func startSession(t *testing.T, router *stream.Router, identity string, symbols []string, opts ...stream.SessionOption) *sessionHarness {
	t.Helper()
	return startSessionWithQueue(t, router, identity, symbols, 32, opts...)
}

func startSessionWithQueue(t *testing.T, router *stream.Router, identity string, symbols []string, queueSize int, opts ...stream.SessionOption) *sessionHarness {
	t.Helper()

	h := &sessionHarness{
		router:    router,
		transport: newFakeTransport(),
		ticker:    newManualTicker(),
		done:      make(chan struct{}),
	}
	opts = append([]stream.SessionOption{stream.WithTicker(h.ticker.factory())}, opts...)
	h.session = stream.NewSession(identity, stream.NewConnection(identity, queueSize), h.transport, router, zap.NewNop(), opts...)
	assert.Equal(t, stream.StateInitializing, h.session.State())

	require.NoError(t, h.session.Start(symbols, stream.SnapshotPayload{Action: stream.ActionSnapshot}))
	go func() {
		defer close(h.done)
		h.session.Run(context.Background())
	}()
	return h
}

func (h *sessionHarness) wait(t *testing.T) {
	t.Helper()
	select {
	case <-h.done:
	case <-time.After(time.Second):
		t.Fatal("session did not stop")
	}
}

func newRouter() *stream.Router {
	return stream.NewRouter(stream.NewRegistry(), zap.NewNop())
}

// go test -v --run TestSessionSnapshotFirst
func TestSessionSnapshotFirst(t *testing.T) {
	router := newRouter()
	h := startSession(t, router, "U1", []string{"AAPL"})

	router.PublishToSymbol("AAPL", stream.PricePayload{Action: stream.ActionPrice, Ticker: "AAPL", Price: 1})
	h.ticker.tick()

	require.Eventually(t, func() bool { return len(h.transport.kinds()) == 3 }, time.Second, time.Millisecond)
	kinds := h.transport.kinds()
	assert.Equal(t, stream.KindSnapshot, kinds[0])
	assert.Equal(t, 1, h.transport.count(stream.KindSnapshot))
	assert.Equal(t, stream.StateStreaming, h.session.State())

	h.transport.disconnect()
	h.wait(t)
}

// go test -v --run TestSessionConnectedEvent
func TestSessionConnectedEvent(t *testing.T) {
	h := startSession(t, newRouter(), "U1", []string{"msft", "AAPL"}, stream.WithConnectedEvent(true))

	require.Eventually(t, func() bool { return len(h.transport.kinds()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []stream.Kind{stream.KindConnected, stream.KindSnapshot}, h.transport.kinds())
	assert.JSONEq(t, `{"userId":"U1","tickers":["AAPL","MSFT"]}`, string(h.transport.frames[0].Data))

	h.transport.disconnect()
	h.wait(t)
}

// go test -v --run TestSessionHeartbeatCadence
func TestSessionHeartbeatCadence(t *testing.T) {
	h := startSession(t, newRouter(), "U1", nil, stream.WithHeartbeat(15*time.Second))
	require.Eventually(t, func() bool { return h.ticker.interval.Load() != 0 }, time.Second, time.Millisecond)
	assert.Equal(t, 15*time.Second, time.Duration(h.ticker.interval.Load()))

	// 40s held open with a 15s interval: ticks at 15s and 30s
	h.ticker.tick()
	h.ticker.tick()

	require.Eventually(t, func() bool { return h.transport.count(stream.KindPing) == 2 }, time.Second, time.Millisecond)
	h.transport.disconnect()
	h.wait(t)

	pings := h.transport.count(stream.KindPing)
	assert.GreaterOrEqual(t, pings, 2)
	assert.LessOrEqual(t, pings, 3)
	assert.JSONEq(t, `{}`, string(h.transport.frames[1].Data))
}

// go test -v --run TestSessionDisconnectUnregisters
func TestSessionDisconnectUnregisters(t *testing.T) {
	router := newRouter()
	other := startSession(t, router, "U2", []string{"GOOG"})
	h := startSession(t, router, "U1", []string{"AAPL"})
	require.Equal(t, 2, router.CountConnections())

	h.transport.disconnect()
	h.wait(t)

	assert.Equal(t, 1, router.CountConnections())
	assert.Equal(t, stream.StateClosed, h.session.State())
	assert.True(t, h.ticker.stopped.Load())
	assert.True(t, h.session.Connection().Closed())
	assert.EqualValues(t, 1, h.transport.closes.Load())

	writes := len(h.transport.kinds())
	assert.Zero(t, router.PublishToSymbol("AAPL", map[string]any{"price": 1}))
	assert.Len(t, h.transport.kinds(), writes, "no writes after close")

	other.transport.disconnect()
	other.wait(t)
	assert.Zero(t, router.CountConnections())
}

// go test -v --run TestSessionCloseIsIdempotent
func TestSessionCloseIsIdempotent(t *testing.T) {
	router := newRouter()
	h := startSession(t, router, "U1", nil)

	h.session.Close("test")
	h.session.Close("test")
	h.wait(t)

	assert.Zero(t, router.CountConnections())
	assert.EqualValues(t, 1, h.transport.closes.Load())
}

// go test -v --run TestSessionWriteFailureCloses
func TestSessionWriteFailureCloses(t *testing.T) {
	router := newRouter()
	transport := newFakeTransport()
	transport.failOn = 2
	ticker := newManualTicker()

	s := stream.NewSession("U1", stream.NewConnection("U1", 8), transport, router, zap.NewNop(),
		stream.WithTicker(ticker.factory()))
	require.NoError(t, s.Start([]string{"AAPL"}, stream.SnapshotPayload{Action: stream.ActionSnapshot}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(context.Background())
	}()
	router.PublishToSymbol("AAPL", map[string]any{"price": 2})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not stop after write failure")
	}
	assert.Equal(t, stream.StateClosed, s.State())
	assert.Zero(t, router.CountConnections())
}

// go test -v --run TestSupersededSessionKeepsSuccessor
func TestSupersededSessionKeepsSuccessor(t *testing.T) {
	router := newRouter()
	first := startSession(t, router, "U1", []string{"AAPL"})
	second := startSession(t, router, "U1", []string{"MSFT"})

	first.transport.disconnect()
	first.wait(t)

	conn, ok := router.Registry().Get("U1")
	require.True(t, ok)
	assert.Same(t, second.session.Connection(), conn)
	assert.Equal(t, []string{"MSFT"}, router.Registry().Symbols("U1"))

	second.transport.disconnect()
	second.wait(t)
	assert.Zero(t, router.CountConnections())
}

// go test -v --run TestCloseAllEndsSessions
func TestCloseAllEndsSessions(t *testing.T) {
	router := newRouter()
	a := startSession(t, router, "A", nil)
	b := startSession(t, router, "B", nil)

	assert.Equal(t, 2, router.Registry().CloseAll())
	a.wait(t)
	b.wait(t)
	assert.Equal(t, stream.StateClosed, a.session.State())
	assert.Equal(t, stream.StateClosed, b.session.State())
	assert.Equal(t, 1, a.transport.count(stream.KindSnapshot), "queued snapshot is flushed before exit")
}

// go test -v --run TestSessionContextCancel
func TestSessionContextCancel(t *testing.T) {
	router := newRouter()
	transport := newFakeTransport()
	s := stream.NewSession("U1", stream.NewConnection("U1", 8), transport, router, zap.NewNop(),
		stream.WithTicker(newManualTicker().factory()))
	require.NoError(t, s.Start(nil, stream.SnapshotPayload{Action: stream.ActionSnapshot}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Run(ctx)

	assert.Equal(t, stream.StateClosed, s.State())
	assert.Zero(t, router.CountConnections())
}

// go test -v --run TestSessionDefaultHeartbeat
func TestSessionDefaultHeartbeat(t *testing.T) {
	h := startSession(t, newRouter(), "U1", nil)
	require.Eventually(t, func() bool { return h.ticker.interval.Load() != 0 }, time.Second, time.Millisecond)
	assert.Equal(t, stream.DefaultHeartbeat, time.Duration(h.ticker.interval.Load()))

	h.transport.disconnect()
	h.wait(t)
}

// go test -v --run TestSessionSingleSlotQueue
func TestSessionSingleSlotQueue(t *testing.T) {
	router := newRouter()
	h := startSessionWithQueue(t, router, "U1", []string{"AAPL"}, 1, stream.WithConnectedEvent(true))
	assert.Equal(t, stream.StateStreaming, h.session.State())

	require.Eventually(t, func() bool { return len(h.transport.kinds()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []stream.Kind{stream.KindConnected, stream.KindSnapshot}, h.transport.kinds())

	assert.Equal(t, 1, router.PublishToSymbol("AAPL", stream.PricePayload{Action: stream.ActionPrice, Ticker: "AAPL", Price: 1}))
	require.Eventually(t, func() bool { return len(h.transport.kinds()) == 3 }, time.Second, time.Millisecond)
	h.ticker.tick()
	require.Eventually(t, func() bool { return len(h.transport.kinds()) == 4 }, time.Second, time.Millisecond)

	assert.Equal(t, []stream.Kind{stream.KindConnected, stream.KindSnapshot, stream.KindPrice, stream.KindPing}, h.transport.kinds())

	h.transport.disconnect()
	h.wait(t)
}

// go test -v --run TestSessionStartFailsWithoutSnapshot
func TestSessionStartFailsWithoutSnapshot(t *testing.T) {
	router := newRouter()
	transport := newFakeTransport()
	conn := stream.NewConnection("U1", 8)
	conn.Close()

	s := stream.NewSession("U1", conn, transport, router, zap.NewNop(),
		stream.WithTicker(newManualTicker().factory()))
	err := s.Start([]string{"AAPL"}, stream.SnapshotPayload{Action: stream.ActionSnapshot})

	require.Error(t, err)
	assert.True(t, errors.Is(err, stream.ErrConnectionClosed))
	assert.Equal(t, stream.StateClosed, s.State())
	assert.Zero(t, router.CountConnections())
	assert.EqualValues(t, 1, transport.closes.Load())
}

// go test -v --run TestCloseAllEndsSupersededSessions
func TestCloseAllEndsSupersededSessions(t *testing.T) {
	router := newRouter()
	first := startSession(t, router, "U1", []string{"AAPL"})
	second := startSession(t, router, "U1", []string{"MSFT"})

	assert.Equal(t, 2, router.Registry().CloseAll())
	first.wait(t)
	second.wait(t)
	assert.Equal(t, stream.StateClosed, first.session.State())
	assert.Equal(t, stream.StateClosed, second.session.State())
	assert.EqualValues(t, 1, first.transport.closes.Load())
}

// go test -v --run TestSessionCancelAfterDisconnect
func TestSessionCancelAfterDisconnect(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	transport := newFakeTransport()
	s := stream.NewSession("U1", stream.NewConnection("U1", 8), transport, newRouter(), zap.New(core),
		stream.WithTicker(newManualTicker().factory()))
	require.NoError(t, s.Start(nil, stream.SnapshotPayload{Action: stream.ActionSnapshot}))

	// the request context of a streaming response ends together with the peer
	ctx, cancel := context.WithCancel(context.Background())
	transport.disconnect()
	cancel()
	s.Run(ctx)

	closed := logs.FilterMessage("stream closed").All()
	require.Len(t, closed, 1)
	assert.Equal(t, "client disconnected", closed[0].ContextMap()["reason"])
}

// go test -v --run TestSessionContextCancelReportsShutdown
func TestSessionContextCancelReportsShutdown(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := stream.NewSession("U1", stream.NewConnection("U1", 8), newFakeTransport(), newRouter(), zap.New(core),
		stream.WithTicker(newManualTicker().factory()))
	require.NoError(t, s.Start(nil, stream.SnapshotPayload{Action: stream.ActionSnapshot}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Run(ctx)

	closed := logs.FilterMessage("stream closed").All()
	require.Len(t, closed, 1)
	assert.Equal(t, "server shutdown", closed[0].ContextMap()["reason"])
}

// go test -v --run TestStateString
func TestStateString(t *testing.T) {
	assert.Equal(t, "initializing", stream.StateInitializing.String())
	assert.Equal(t, "streaming", stream.StateStreaming.String())
	assert.Equal(t, "closed", stream.StateClosed.String())
	assert.Equal(t, "unknown", stream.State(42).String())
}
