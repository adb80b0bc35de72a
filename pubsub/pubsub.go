package pubsub

import (
	"context"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Event is one step of a self test run lifecycle
type Event struct {
	Action string    `json:"action"` // started, passed, failed, timeout
	RunID  uuid.UUID `json:"run_id"`
	Owner  string    `json:"owner,omitempty"`
}

// PubSub fans run events out to subscribers
type PubSub struct {
	lock        sync.Mutex
	cpt         uint64
	subscribers map[uint64]chan Event
	wg          sync.WaitGroup
}

func NewPubSub() *PubSub {
	return &PubSub{
		subscribers: make(map[uint64]chan Event),
	}
}

// Subscribe opens an event channel, closed when ctx is done
func (p *PubSub) Subscribe(ctx context.Context) chan Event {
	p.lock.Lock()
	id := p.cpt
	p.cpt++
	events := make(chan Event, 8)
	p.subscribers[id] = events
	p.wg.Add(1)
	p.lock.Unlock()
	go func() {
		<-ctx.Done()
		p.lock.Lock()
		delete(p.subscribers, id)
		p.wg.Done()
		p.lock.Unlock()
		log.WithField("id", id).Debug("Closing subscription")
	}()
	return events
}

// Publish sends the event to every subscriber, dropping it for the slow ones
func (p *PubSub) Publish(evt Event) {
	p.lock.Lock()
	defer p.lock.Unlock()
	for id, events := range p.subscribers {
		select {
		case events <- evt:
		default:
			log.WithFields(log.Fields{
				"id":    id,
				"event": evt,
			}).Warn("Subscriber is lagging, event dropped")
		}
	}
}

// Wait blocks until every subscription is closed
func (p *PubSub) Wait() {
	p.wg.Wait()
}
