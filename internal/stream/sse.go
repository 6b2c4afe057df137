package stream

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// SSETransport writes frames as server-sent events on an open response.
type SSETransport struct {
	w            http.ResponseWriter
	rc           *http.ResponseController
	gone         <-chan struct{}
	writeTimeout time.Duration
}

// NewSSETransport sends the event-stream headers and flushes them so the
// client sees the stream open before the first event.
func NewSSETransport(w http.ResponseWriter, r *http.Request, writeTimeout time.Duration) (*SSETransport, error) {
	if _, ok := w.(http.Flusher); !ok {
		return nil, errors.New("streaming unsupported by response writer")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	t := &SSETransport{
		w:            w,
		rc:           http.NewResponseController(w),
		gone:         r.Context().Done(),
		writeTimeout: writeTimeout,
	}
	if err := t.rc.Flush(); err != nil {
		return nil, fmt.Errorf("flush headers: %w", err)
	}
	return t, nil
}

func (t *SSETransport) WriteFrame(f Frame) error {
	if t.writeTimeout > 0 {
		err := t.rc.SetWriteDeadline(time.Now().Add(t.writeTimeout))
		if err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
	}
	if _, err := t.w.Write(f.Bytes()); err != nil {
		return err
	}
	return t.rc.Flush()
}

func (t *SSETransport) Gone() <-chan struct{} { return t.gone }

// Close is a no-op; the response ends when the handler returns.
func (t *SSETransport) Close() error { return nil }
