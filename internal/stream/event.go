package stream

import (
	"encoding/json"
	"strconv"
	"time"

	apperrors "watchstream/pkg/errors"
)

// Kind names an event class on the wire.
type Kind string

const (
	KindConnected          Kind = "connected"
	KindSnapshot           Kind = "snapshot"
	KindPrice              Kind = "price"
	KindSubscriptionUpdate Kind = "subscriptionUpdate"
	KindPing               Kind = "ping"
	KindDirect             Kind = "direct"
)

// Frame is one encoded event, ready for any transport.
type Frame struct {
	Kind       Kind
	ID         int64
	Data       json.RawMessage
	OccurredAt time.Time
}

// Bytes renders the frame in event-stream framing:
//
//	event: <kind>
//	id: <n>
//	data: <json>
func (f Frame) Bytes() []byte {
	b := make([]byte, 0, len(f.Data)+len(f.Kind)+32)
	b = append(b, "event: "...)
	b = append(b, f.Kind...)
	b = append(b, "\nid: "...)
	b = strconv.AppendInt(b, f.ID, 10)
	b = append(b, "\ndata: "...)
	b = append(b, f.Data...)
	b = append(b, "\n\n"...)
	return b
}

// envelope is the message shape used by message-oriented transports.
type envelope struct {
	Event Kind            `json:"event"`
	ID    int64           `json:"id"`
	Data  json.RawMessage `json:"data"`
}

// Envelope renders the frame as a single JSON document.
func (f Frame) Envelope() []byte {
	// Data is already valid JSON, so this cannot fail.
	b, _ := json.Marshal(envelope{Event: f.Kind, ID: f.ID, Data: f.Data})
	return b
}

// Encode serializes payload into a frame. A nil payload encodes as {}.
func Encode(kind Kind, payload any, id int64) (Frame, error) {
	if payload == nil {
		payload = struct{}{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, apperrors.Wrapf(apperrors.ErrCodeEncoding, err, "encode %s event", kind)
	}
	return Frame{Kind: kind, ID: id, Data: data, OccurredAt: time.Now()}, nil
}
