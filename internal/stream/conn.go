package stream

import (
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "watchstream/pkg/errors"
)

var (
	// ErrConnectionClosed is returned by Send after Close.
	ErrConnectionClosed = apperrors.New(apperrors.ErrCodeDelivery, "connection closed")
	// ErrQueueFull is returned when the consumer has fallen behind; the event is dropped.
	ErrQueueFull = apperrors.New(apperrors.ErrCodeDelivery, "send queue full")
)

const (
	DefaultQueueSize = 256
	maxPending       = 64
	// openingSlots is queue room kept for the connected and snapshot events.
	openingSlots = 2
)

type pendingEvent struct {
	kind    Kind
	payload any
}

// Connection is the write side of one subscriber stream. Send only enqueues;
// the owning session drains Queue and performs the transport I/O, so a slow
// peer never blocks a publisher.
//
// Until a snapshot has been sent, events other than connected and snapshot
// are held back and flushed right after it. The opening events never count
// against the queue size.
type Connection struct {
	id       uuid.UUID
	identity string
	openedAt time.Time
	limit    int

	mu      sync.Mutex
	nextID  int64
	ready   bool
	closed  bool
	pending []pendingEvent

	queue     chan Frame
	done      chan struct{}
	closeOnce sync.Once
}

func NewConnection(identity string, queueSize int) *Connection {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Connection{
		id:       uuid.New(),
		identity: identity,
		openedAt: time.Now(),
		limit:    queueSize,
		queue:    make(chan Frame, queueSize+openingSlots),
		done:     make(chan struct{}),
	}
}

func (c *Connection) ID() uuid.UUID       { return c.id }
func (c *Connection) Identity() string    { return c.identity }
func (c *Connection) OpenedAt() time.Time { return c.openedAt }

// Queue yields encoded frames in send order.
func (c *Connection) Queue() <-chan Frame { return c.queue }

// Done is closed once the connection is closed.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Send encodes payload as a kind event and enqueues it.
func (c *Connection) Send(kind Kind, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}
	if !c.ready && kind != KindSnapshot && kind != KindConnected {
		if len(c.pending) == maxPending {
			c.pending = c.pending[1:]
		}
		c.pending = append(c.pending, pendingEvent{kind: kind, payload: payload})
		return nil
	}

	if err := c.enqueueLocked(kind, payload); err != nil {
		return err
	}
	if kind == KindSnapshot && !c.ready {
		c.ready = true
		c.flushPendingLocked()
	}
	return nil
}

func (c *Connection) enqueueLocked(kind Kind, payload any) error {
	if c.ready && len(c.queue) >= c.limit {
		return ErrQueueFull
	}
	frame, err := Encode(kind, payload, c.nextID)
	if err != nil {
		return err
	}
	select {
	case c.queue <- frame:
		c.nextID++
		return nil
	default:
		return ErrQueueFull
	}
}

// flushPendingLocked drops anything that fails; the events were best-effort.
func (c *Connection) flushPendingLocked() {
	for _, ev := range c.pending {
		_ = c.enqueueLocked(ev.kind, ev.payload)
	}
	c.pending = nil
}

// Close marks the connection dead. It reports whether this call closed it.
func (c *Connection) Close() bool {
	closed := false
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.pending = nil
		c.mu.Unlock()
		close(c.done)
		closed = true
	})
	return closed
}

func (c *Connection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Sent returns how many events have been enqueued so far.
func (c *Connection) Sent() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextID
}
