package stream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsMaxMessageSize = 512
	wsCloseGrace     = time.Second
)

// WSTransport writes frames as JSON envelopes on a websocket. Clients only
// ever receive; anything they send is read and discarded so that close
// frames and disconnects are noticed.
type WSTransport struct {
	conn         *websocket.Conn
	gone         chan struct{}
	goneOnce     sync.Once
	writeTimeout time.Duration
}

func NewWSTransport(conn *websocket.Conn, writeTimeout time.Duration) *WSTransport {
	t := &WSTransport{
		conn:         conn,
		gone:         make(chan struct{}),
		writeTimeout: writeTimeout,
	}
	go t.readPump()
	return t
}

func (t *WSTransport) readPump() {
	defer t.goneOnce.Do(func() { close(t.gone) })

	t.conn.SetReadLimit(wsMaxMessageSize)
	for {
		if _, _, err := t.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (t *WSTransport) WriteFrame(f Frame) error {
	if t.writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
			return err
		}
	}
	return t.conn.WriteMessage(websocket.TextMessage, f.Envelope())
}

func (t *WSTransport) Gone() <-chan struct{} { return t.gone }

// Close sends a normal close frame and drops the socket, which also ends the
// read pump.
func (t *WSTransport) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsCloseGrace))
	return t.conn.Close()
}
