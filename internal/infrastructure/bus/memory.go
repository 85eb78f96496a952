// Package bus provides the event bus implementations: an in-process fan-out
// for single-replica deployments and tests, and a Redis Pub/Sub variant for
// multi-replica deployments. Both deliver at-most-once to current
// subscribers of the exact topic string, with no queuing and no replay.
package bus

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/leadstack/crm-api/internal/core/ports"
)

const subscriberBuffer = 32

// MemoryBus is an in-process topic fan-out. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string]map[*memorySubscription]struct{}
	closed bool
	log    zerolog.Logger
}

func NewMemoryBus(log zerolog.Logger) *MemoryBus {
	return &MemoryBus{
		subs: make(map[string]map[*memorySubscription]struct{}),
		log:  log,
	}
}

type memorySubscription struct {
	bus   *MemoryBus
	topic string
	ch    chan ports.Event
	once  sync.Once
}

func (s *memorySubscription) Events() <-chan ports.Event {
	return s.ch
}

func (s *memorySubscription) Close() error {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	s.bus.detach(s)
	return nil
}

// detach removes the subscription and closes its channel. Callers hold the
// bus lock.
func (b *MemoryBus) detach(s *memorySubscription) {
	if set, ok := b.subs[s.topic]; ok {
		if _, present := set[s]; present {
			delete(set, s)
			if len(set) == 0 {
				delete(b.subs, s.topic)
			}
		}
	}
	s.once.Do(func() { close(s.ch) })
}

// Publish delivers the event to everyone currently subscribed to topic.
func (b *MemoryBus) Publish(_ context.Context, topic, name string, payload any) error {
	event := ports.Event{Topic: topic, Name: name, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for sub := range b.subs[topic] {
		select {
		case sub.ch <- event:
		default:
			// Slow consumer: at-most-once delivery allows dropping.
			b.log.Debug().Str("topic", topic).Str("event", name).
				Msg("dropping event for slow subscriber")
		}
	}
	return nil
}

// Subscribe opens a feed for topic. Close the subscription on disconnect.
func (b *MemoryBus) Subscribe(_ context.Context, topic string) (ports.Subscription, error) {
	sub := &memorySubscription{
		bus:   b,
		topic: topic,
		ch:    make(chan ports.Event, subscriberBuffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.once.Do(func() { close(sub.ch) })
		return sub, nil
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*memorySubscription]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	return sub, nil
}

// Close tears down every subscription. Subsequent publishes are no-ops.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, set := range b.subs {
		for sub := range set {
			sub.once.Do(func() { close(sub.ch) })
		}
	}
	b.subs = make(map[string]map[*memorySubscription]struct{})
	return nil
}
