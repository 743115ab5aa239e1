// Package bus is the in-process pub/sub middleware of the rig.
//
// Handlers subscribed to a topic are invoked from a per-subscription
// goroutine, so delivery is FIFO within a topic subscription but unordered
// across topics. Publish never blocks: when a subscriber's queue is full the
// message is dropped rather than queued, keeping stale telemetry from piling
// up behind slow consumers.
package bus

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by Subscribe after the bus has been closed.
var ErrClosed = errors.New("bus is closed")

// Message is one published value with its source topic and stamp.
type Message struct {
	Topic   string
	Stamp   time.Time
	Payload any
}

// Handler consumes messages for one subscription.
type Handler func(Message)

// Stats counts bus traffic since creation.
type Stats struct {
	Published uint64
	Delivered uint64
	Dropped   uint64
}

const subQueueDepth = 16

type subscription struct {
	topic string
	ch    chan Message
}

// Bus fans out messages to topic subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]*subscription
	closed bool
	wg     sync.WaitGroup

	published atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[string][]*subscription)}
}

// Subscribe registers handler for a topic and returns a function that
// cancels the subscription.
func (b *Bus) Subscribe(topic string, handler Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	sub := &subscription{topic: topic, ch: make(chan Message, subQueueDepth)}
	b.subs[topic] = append(b.subs[topic], sub)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for m := range sub.ch {
			handler(m)
		}
	}()

	return func() { b.unsubscribe(sub) }, nil
}

func (b *Bus) unsubscribe(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[sub.topic]
	for i, s := range subs {
		if s == sub {
			b.subs[sub.topic] = append(subs[:i], subs[i+1:]...)
			close(sub.ch)
			return
		}
	}
}

// Publish delivers payload to every subscriber of topic without blocking.
// Messages to subscribers with full queues are dropped and counted.
func (b *Bus) Publish(topic string, stamp time.Time, payload any) {
	b.published.Add(1)
	m := Message{Topic: topic, Stamp: stamp, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs[topic] {
		select {
		case sub.ch <- m:
			b.delivered.Add(1)
		default:
			b.dropped.Add(1)
		}
	}
}

// Stats returns a snapshot of the traffic counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Dropped:   b.dropped.Load(),
	}
}

// Close stops delivery and waits for in-flight handlers to finish.
// Publishing after Close is a no-op.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.closed = true
	for _, subs := range b.subs {
		for _, sub := range subs {
			close(sub.ch)
		}
	}
	b.subs = make(map[string][]*subscription)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}
