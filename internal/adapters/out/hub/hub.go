// Package hub provides the in-process topic broadcaster: a subscription
// registry that fans published payloads out to live subscriber channels. It is
// the default broadcast sink for single-process deployments and the fake the
// notification tests run against; multi-process deployments switch to the
// Redis sink through configuration.
package hub

import "sync"

// subscriberBuffer is each subscription's channel capacity. A subscriber that
// falls this far behind starts losing payloads instead of slowing the
// publisher down.
const subscriberBuffer = 16

// Hub routes payloads from publishers to topic subscribers. Delivery follows
// the broadcaster contract: at-most-once, best-effort, live traffic only. A
// publish to a topic nobody subscribes to is a no-op.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*Subscription]struct{}),
	}
}

// Publish sends the payload to every current subscriber of the topic. A full
// subscriber channel drops the payload for that subscriber; Publish never
// blocks on consumers and never fails.
func (h *Hub) Publish(topic string, payload any) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.topics[topic] {
		select {
		case sub.ch <- payload:
		default:
		}
	}

	return nil
}

// Subscribe registers a new subscriber on the topic. The caller owns the
// subscription and must Close it to stop receiving.
func (h *Hub) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		hub:   h,
		topic: topic,
		ch:    make(chan any, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[topic] = subs
	}
	subs[sub] = struct{}{}

	return sub
}

// Subscription is one subscriber's handle on a topic.
type Subscription struct {
	hub   *Hub
	topic string
	ch    chan any
	once  sync.Once
}

// C returns the channel payloads arrive on. The channel is closed by Close.
func (s *Subscription) C() <-chan any {
	return s.ch
}

// Close deregisters the subscription and closes its channel. Safe to call
// more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()

		subs := s.hub.topics[s.topic]
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.hub.topics, s.topic)
		}

		close(s.ch)
	})
}
