package dispatch

import (
	"log/slog"
	"slices"
	"sync"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/metrics"

	"github.com/google/uuid"
)

// DefaultSendBuffer is the outbound buffer of a subscription when none is given.
const DefaultSendBuffer = 32

// Subscription is one connected endpoint. Events arrive on C until the subscription
// is disconnected, after which C is closed.
type Subscription struct {
	id        string
	principal kernel.Identity
	events    chan Event

	// guarded by Broker.mu
	topics map[Topic]struct{}
	closed bool
}

func (s *Subscription) ID() string {
	return s.id
}

func (s *Subscription) Principal() kernel.Identity {
	return s.principal
}

// C returns the receive side of the outbound buffer.
func (s *Subscription) C() <-chan Event {
	return s.events
}

// Broker is the topic membership table. It is created once and shared by reference.
type Broker struct {
	mu     sync.RWMutex
	topics map[Topic]map[*Subscription]struct{}
	subs   map[*Subscription]struct{}
	logger *slog.Logger
}

func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		topics: make(map[Topic]map[*Subscription]struct{}),
		subs:   make(map[*Subscription]struct{}),
		logger: logger.With("component", "dispatch-broker"),
	}
}

// Subscribe registers a new endpoint for principal with an outbound buffer of the
// given size. It has no topics until Join is called.
func (b *Broker) Subscribe(principal kernel.Identity, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	s := &Subscription{
		id:        uuid.NewString(),
		principal: principal,
		events:    make(chan Event, buffer),
		topics:    make(map[Topic]struct{}),
	}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	metrics.DispatchSubscribers.Inc()
	return s
}

// Join adds s to topics. Empty topics and disconnected subscriptions are ignored.
func (b *Broker) Join(s *Subscription, topics ...Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s.closed {
		return
	}
	for _, t := range topics {
		if t.IsEmpty() {
			continue
		}
		members, ok := b.topics[t]
		if !ok {
			members = make(map[*Subscription]struct{})
			b.topics[t] = members
		}
		members[s] = struct{}{}
		s.topics[t] = struct{}{}
	}
}

// Leave removes s from topics.
func (b *Broker) Leave(s *Subscription, topics ...Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, t := range topics {
		b.leaveLocked(s, t)
	}
}

// Disconnect removes every membership of s and closes its channel. It is safe to
// call more than once.
func (b *Broker) Disconnect(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s.closed {
		return
	}
	for t := range s.topics {
		b.leaveLocked(s, t)
	}
	delete(b.subs, s)
	s.closed = true
	close(s.events)

	metrics.DispatchSubscribers.Dec()
}

// Topics returns the topics s is a member of, sorted.
func (b *Broker) Topics(s *Subscription) []Topic {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Topic, 0, len(s.topics))
	for t := range s.topics {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Members returns the number of subscriptions in topic.
func (b *Broker) Members(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Publish hands e to every member of e.Topic without blocking. A member whose buffer
// is full misses the event. It returns the number of members that received it.
func (b *Broker) Publish(e Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for s := range b.topics[e.Topic] {
		select {
		case s.events <- e:
			delivered++
			metrics.DispatchDeliveriesTotal.Inc()
		default:
			metrics.DispatchDeliveriesDroppedTotal.Inc()
			b.logger.Warn("subscriber buffer full, event dropped",
				"subscription", s.id,
				"topic", e.Topic,
				"orderId", e.OrderID,
				"type", e.Type,
			)
		}
	}
	return delivered
}

func (b *Broker) leaveLocked(s *Subscription, t Topic) {
	if members, ok := b.topics[t]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(b.topics, t)
		}
	}
	delete(s.topics, t)
}
