package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/memstore"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustGeoPoint(t *testing.T, longitude, latitude float64) kernel.GeoPoint {
	t.Helper()
	point, err := kernel.NewGeoPoint(longitude, latitude)
	require.NoError(t, err)
	return point
}

func newConfirmedOrder(t *testing.T) *order.Order {
	t.Helper()
	aggregate, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), mustGeoPoint(t, 77.5946, 12.9716))
	require.NoError(t, err)
	return aggregate
}

func newAssignedOrder(t *testing.T) (*order.Order, kernel.UUID) {
	t.Helper()
	aggregate := newConfirmedOrder(t)
	agentID := kernel.NewUUID()
	position := mustGeoPoint(t, 77.6, 12.97)
	require.NoError(t, aggregate.Assign(agentID, &position))
	return aggregate, agentID
}

type publishRecord struct {
	topic   string
	payload any
}

// stubBroadcaster records successful publishes. A topic listed in failures
// errors instead of recording; a non-nil gate makes every publish block until
// the gate is closed.
type stubBroadcaster struct {
	mu        sync.Mutex
	published []publishRecord
	failures  map[string]error
	gate      chan struct{}
	started   int
}

func newStubBroadcaster() *stubBroadcaster {
	return &stubBroadcaster{failures: map[string]error{}}
}

func (b *stubBroadcaster) Publish(topic string, payload any) error {
	b.mu.Lock()
	b.started++
	gate := b.gate
	err := b.failures[topic]
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.published = append(b.published, publishRecord{topic: topic, payload: payload})
	b.mu.Unlock()
	return nil
}

func (b *stubBroadcaster) records() []publishRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]publishRecord, len(b.published))
	copy(out, b.published)
	return out
}

func (b *stubBroadcaster) topics() []string {
	records := b.records()
	topics := make([]string, 0, len(records))
	for _, record := range records {
		topics = append(topics, record.topic)
	}
	return topics
}

func (b *stubBroadcaster) startedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}

// recordsFor returns the publishes whose payload is a change event for the
// given order.
func (b *stubBroadcaster) recordsFor(orderID kernel.UUID) []publishRecord {
	var out []publishRecord
	for _, record := range b.records() {
		event, ok := record.payload.(ChangeEvent)
		if ok && event.OrderID == orderID.String() {
			out = append(out, record)
		}
	}
	return out
}

// stubIntegrations records forwarded change events in call order.
type stubIntegrations struct {
	mu     sync.Mutex
	events []ChangeEvent
	err    error
}

func (s *stubIntegrations) PublishOrderChanged(event ChangeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubIntegrations) recorded() []ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChangeEvent, len(s.events))
	copy(out, s.events)
	return out
}

// flakyFeed refuses a set number of Watch attempts before delegating to the
// in-memory feed.
type flakyFeed struct {
	*memstore.OrderFeed
	mu       sync.Mutex
	refusals int
}

func (f *flakyFeed) Watch(ctx context.Context, resumeAfter ports.ResumeToken) (ports.OrderChangeCursor, error) {
	f.mu.Lock()
	refuse := f.refusals > 0
	if refuse {
		f.refusals--
	}
	f.mu.Unlock()

	if refuse {
		return nil, errors.New("stream refused")
	}
	return f.OrderFeed.Watch(ctx, resumeAfter)
}

// instantTimer records each requested backoff delay on the channel and fires
// immediately, so reconnect cycles run at test speed while the tests still
// see the delay the watcher asked for.
func instantTimer(requests chan time.Duration) func(time.Duration) <-chan time.Time {
	return func(d time.Duration) <-chan time.Time {
		requests <- d
		fired := make(chan time.Time, 1)
		fired <- time.Time{}
		return fired
	}
}
