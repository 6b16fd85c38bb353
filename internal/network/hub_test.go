package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLateJoinerGetsLastFrame(t *testing.T) {
	b := NewBroadcaster()
	b.Publish([]byte(`{"tick":1}`))
	b.Publish([]byte(`{"tick":2}`))

	ch := b.Register("viewer")
	require.Len(t, ch, 1)
	assert.Equal(t, `{"tick":2}`, string(<-ch))
}

func TestPublishNeverBlocks(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Register("slow")

	for i := 0; i < FrameBuffer+5; i++ {
		b.Publish([]byte("frame"))
	}
	assert.Len(t, ch, FrameBuffer)
	assert.Equal(t, 5, b.Dropped())
}

func TestRegisterReplacesChannel(t *testing.T) {
	b := NewBroadcaster()
	old := b.Register("a")
	cur := b.Register("a")

	_, open := <-old
	assert.False(t, open, "old channel must be closed")
	assert.Equal(t, 1, b.SubscriberCount())

	b.Release("a", cur)
	assert.False(t, b.HasSubscriber("a"))
	b.Release("a", cur)
}

func TestReleaseIgnoresReplacedChannel(t *testing.T) {
	b := NewBroadcaster()
	old := b.Register("a")
	cur := b.Register("a")

	b.Release("a", old)
	assert.True(t, b.HasSubscriber("a"))

	b.Release("a", cur)
	assert.False(t, b.HasSubscriber("a"))
}
