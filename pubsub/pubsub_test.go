package pubsub

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPubsub(t *testing.T) {
	ps := NewPubSub()
	size := 10
	wg := sync.WaitGroup{}
	wg.Add(size)
	cancels := make([]context.CancelFunc, 0)
	for i := 0; i < size; i++ {
		ctx, cancel := context.WithCancel(context.TODO())
		cancels = append(cancels, cancel)
		events := ps.Subscribe(ctx)
		go func() {
			evt := <-events
			assert.Equal(t, "passed", evt.Action)
			wg.Done()
		}()
	}
	assert.Len(t, ps.subscribers, size)
	ps.Publish(Event{Action: "passed", RunID: uuid.New()})
	wg.Wait()

	for _, cancel := range cancels {
		cancel()
	}
	ps.Wait()
	assert.Len(t, ps.subscribers, 0)
}

func TestPubsubSlowSubscriber(t *testing.T) {
	ps := NewPubSub()
	ctx, cancel := context.WithCancel(context.TODO())
	defer cancel()
	events := ps.Subscribe(ctx)
	// fill the buffer without reading, nobody must block
	for i := 0; i < 20; i++ {
		ps.Publish(Event{Action: "started"})
	}
	assert.Equal(t, 8, len(events))
}
