package stream_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"watchstream/internal/stream"
)

type fakeTransport struct {
	mu       sync.Mutex
	frames   []stream.Frame
	failOn   int // fail the n-th write (1-based); 0 never fails
	writes   int
	gone     chan struct{}
	goneOnce sync.Once
	closes   atomic.Int32
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{gone: make(chan struct{})}
}

func (t *fakeTransport) WriteFrame(f stream.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writes++
	if t.failOn > 0 && t.writes >= t.failOn {
		return errors.New("broken pipe")
	}
	t.frames = append(t.frames, f)
	return nil
}

func (t *fakeTransport) Gone() <-chan struct{} { return t.gone }

func (t *fakeTransport) Close() error {
	t.closes.Add(1)
	return nil
}

// disconnect simulates the peer going away.
func (t *fakeTransport) disconnect() {
	t.goneOnce.Do(func() { close(t.gone) })
}

func (t *fakeTransport) kinds() []stream.Kind {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]stream.Kind, 0, len(t.frames))
	for _, f := range t.frames {
		out = append(out, f.Kind)
	}
	return out
}

func (t *fakeTransport) count(kind stream.Kind) int {
	n := 0
	for _, k := range t.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

// manualTicker fires only when the test calls tick.
type manualTicker struct {
	c        chan time.Time
	stopped  atomic.Bool
	interval atomic.Int64
}

func newManualTicker() *manualTicker {
	return &manualTicker{c: make(chan time.Time)}
}

func (m *manualTicker) C() <-chan time.Time { return m.c }
func (m *manualTicker) Stop()               { m.stopped.Store(true) }

// tick blocks until the session has received the tick.
func (m *manualTicker) tick() {
	m.c <- time.Now()
}

func (m *manualTicker) factory() func(time.Duration) stream.Ticker {
	return func(d time.Duration) stream.Ticker {
		m.interval.Store(int64(d))
		return m
	}
}
