package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/ports"
)

// Notifier fans a change event out to its topics. Every publish is
// fire-and-forget: publishes for one event run concurrently with each other
// and with the processing of later events, a failed publish is logged and
// dropped, and nothing is buffered or retried.
type Notifier struct {
	broadcaster ports.Broadcaster
	logger      *slog.Logger
	inFlight    sync.WaitGroup
}

// NewNotifier creates a fan-out stage over the given broadcast sink.
func NewNotifier(broadcaster ports.Broadcaster, logger *slog.Logger) *Notifier {
	return &Notifier{
		broadcaster: broadcaster,
		logger:      logger.With("component", "notifier"),
	}
}

// Notify publishes the event to each of its topics and returns without
// waiting for the publishes to finish.
func (n *Notifier) Notify(ctx context.Context, event ChangeEvent) {
	for _, topic := range event.Topics() {
		n.inFlight.Add(1)
		go func(topic string) {
			defer n.inFlight.Done()

			if err := n.broadcaster.Publish(topic, event); err != nil {
				notifierPublishes.WithLabelValues("failed").Inc()
				n.logger.ErrorContext(ctx, "Notification publish failed",
					"topic", topic, "order_id", event.OrderID, "error", err)
				return
			}
			notifierPublishes.WithLabelValues("sent").Inc()
		}(topic)
	}
}

// Drain waits for outstanding publishes up to the timeout and reports whether
// they all finished. Callers stop producing before draining; publishes left
// running after a false return are abandoned, not cancelled.
func (n *Notifier) Drain(timeout time.Duration) bool {
	settled := make(chan struct{})
	go func() {
		n.inFlight.Wait()
		close(settled)
	}()

	select {
	case <-settled:
		return true
	case <-time.After(timeout):
		return false
	}
}
