package stream_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchstream/internal/stream"
)

// go test -v --run TestConnectionHoldsEventsUntilSnapshot
func TestConnectionHoldsEventsUntilSnapshot(t *testing.T) {
	c := stream.NewConnection("U1", 8)

	require.NoError(t, c.Send(stream.KindPing, nil))
	require.NoError(t, c.Send(stream.KindPrice, map[string]any{"price": 1}))
	assert.Len(t, c.Queue(), 0)

	require.NoError(t, c.Send(stream.KindConnected, stream.ConnectedPayload{UserID: "U1"}))
	require.NoError(t, c.Send(stream.KindSnapshot, stream.SnapshotPayload{Action: stream.ActionSnapshot}))

	var kinds []stream.Kind
	var ids []int64
	for len(c.Queue()) > 0 {
		f := <-c.Queue()
		kinds = append(kinds, f.Kind)
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []stream.Kind{stream.KindConnected, stream.KindSnapshot, stream.KindPing, stream.KindPrice}, kinds)
	assert.Equal(t, []int64{0, 1, 2, 3}, ids)
	assert.EqualValues(t, 4, c.Sent())
}

// go test -v --run TestConnectionQueueFull
func TestConnectionQueueFull(t *testing.T) {
	c := stream.NewConnection("U1", 1)
	require.NoError(t, c.Send(stream.KindSnapshot, nil))

	err := c.Send(stream.KindPrice, map[string]any{})
	assert.True(t, errors.Is(err, stream.ErrQueueFull))
	assert.EqualValues(t, 1, c.Sent(), "dropped events do not consume ids")
	assert.False(t, c.Closed())
}

// go test -v --run TestConnectionClose
func TestConnectionClose(t *testing.T) {
	c := stream.NewConnection("U1", 0)
	assert.NotEmpty(t, c.ID().String())
	assert.Equal(t, "U1", c.Identity())

	assert.True(t, c.Close())
	assert.False(t, c.Close())
	<-c.Done()

	err := c.Send(stream.KindSnapshot, nil)
	assert.True(t, errors.Is(err, stream.ErrConnectionClosed))
}

// go test -v --run TestConnectionOpeningEventsFitSingleSlot
func TestConnectionOpeningEventsFitSingleSlot(t *testing.T) {
	c := stream.NewConnection("U1", 1)
	require.NoError(t, c.Send(stream.KindPrice, map[string]any{"price": 1}))
	require.NoError(t, c.Send(stream.KindConnected, stream.ConnectedPayload{UserID: "U1"}))
	require.NoError(t, c.Send(stream.KindSnapshot, stream.SnapshotPayload{Action: stream.ActionSnapshot}))

	assert.Equal(t, stream.KindConnected, (<-c.Queue()).Kind)
	assert.Equal(t, stream.KindSnapshot, (<-c.Queue()).Kind)
	assert.Len(t, c.Queue(), 0, "held events beyond the queue size are dropped")

	require.NoError(t, c.Send(stream.KindPrice, map[string]any{"price": 2}))
	err := c.Send(stream.KindPrice, map[string]any{"price": 3})
	assert.True(t, errors.Is(err, stream.ErrQueueFull))
}
