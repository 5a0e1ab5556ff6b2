package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribers(t *testing.T) {
	hub := NewHub()

	ch1, cancel1 := hub.Subscribe(4)
	defer cancel1()
	ch2, cancel2 := hub.Subscribe(4)
	defer cancel2()

	hub.Publish(TopicEventCreated, "payload")

	ev1 := <-ch1
	assert.Equal(t, TopicEventCreated, ev1.Topic)
	assert.Equal(t, "payload", ev1.Payload)
	assert.False(t, ev1.At.IsZero())

	ev2 := <-ch2
	assert.Equal(t, TopicEventCreated, ev2.Topic)
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub()

	_, cancel := hub.Subscribe(1)
	defer cancel()

	// More publishes than the buffer holds; the extras are dropped.
	for i := 0; i < 10; i++ {
		hub.Publish(TopicRSVPCreated, i)
	}
}

func TestCancelRemovesSubscription(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe(1)
	require.Equal(t, 1, hub.SubscriberCount())

	cancel()
	assert.Equal(t, 0, hub.SubscriberCount())

	_, open := <-ch
	assert.False(t, open)

	// cancelling twice is safe
	cancel()
}
