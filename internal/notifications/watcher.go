// Package notifications turns committed order mutations into live updates.
//
// The Watcher consumes the store's ordered change feed and derives one
// ChangeEvent per committed write; the Notifier fans each event out to the
// order, customer, and agent topics through the configured broadcast sink.
// The watcher owns reconnection: a dropped stream is reopened after a fixed
// delay from the last delivered position, and a store outage parks the
// watcher until the store layer reports ready again. Because any writer's
// commit surfaces on the feed, subscribers see the same notification no
// matter which code path performed the mutation.
package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/ports"
)

const (
	// reconnectDelay is the fixed wait between losing the change stream and
	// dialing it again. Deliberately not exponential: reconnect storms are
	// not a concern at one stream per process.
	reconnectDelay = 5 * time.Second

	defaultDrainTimeout = 5 * time.Second
	cursorCloseTimeout  = 2 * time.Second
)

// State identifies where the watcher is in its connect/consume/retry cycle.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateActive
	StateBackoff
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateBackoff:
		return "backoff"
	default:
		return "unknown"
	}
}

// IntegrationPublisher forwards change events to an external system (the
// Kafka order-changed topic) in addition to the live fan-out. Calls are made
// sequentially from the watcher loop; a returned error is logged and the
// event is not redelivered.
type IntegrationPublisher interface {
	PublishOrderChanged(event ChangeEvent) error
}

// Watcher is the long-lived task that consumes the order change feed. It is
// constructed and owned by the composition root; Start launches the
// background loop and Stop tears it down.
//
// Events are processed sequentially in commit order. On an unexpected stream
// failure the watcher waits the fixed reconnect delay, then reopens the feed
// from the last delivered resume token, so commits made during the gap are
// replayed rather than lost. While the store itself is unreachable the
// watcher parks in the feed's readiness wait instead of burning reconnect
// attempts.
type Watcher struct {
	feed         ports.OrderFeed
	notifier     *Notifier
	integrations IntegrationPublisher
	logger       *slog.Logger

	after        func(time.Duration) <-chan time.Time
	drainTimeout time.Duration

	// token is the feed position of the last delivered event. Owned by the
	// run goroutine.
	token ports.ResumeToken

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithIntegrationPublisher forwards every change event to the given external
// publisher alongside the topic fan-out.
func WithIntegrationPublisher(publisher IntegrationPublisher) WatcherOption {
	return func(w *Watcher) {
		w.integrations = publisher
	}
}

// WithDrainTimeout bounds how long Stop waits for outstanding fan-out
// publishes before abandoning them.
func WithDrainTimeout(timeout time.Duration) WatcherOption {
	return func(w *Watcher) {
		if timeout > 0 {
			w.drainTimeout = timeout
		}
	}
}

// withTimerFunc replaces the backoff timer source; tests fire it instantly
// and assert the requested delay.
func withTimerFunc(after func(time.Duration) <-chan time.Time) WatcherOption {
	return func(w *Watcher) {
		w.after = after
	}
}

// NewWatcher creates a stopped watcher over the given feed and fan-out.
func NewWatcher(feed ports.OrderFeed, notifier *Notifier, logger *slog.Logger, options ...WatcherOption) *Watcher {
	watcher := &Watcher{
		feed:         feed,
		notifier:     notifier,
		logger:       logger.With("component", "change_feed_watcher"),
		after:        time.After,
		drainTimeout: defaultDrainTimeout,
	}
	for _, option := range options {
		option(watcher)
	}
	return watcher
}

// Start launches the background consume loop. Calling Start on a running
// watcher is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	w.cancel = cancel
	w.done = done

	go w.run(ctx, done)
	w.logger.InfoContext(ctx, "Change feed watcher started")
}

// Stop closes the stream, suppresses reconnection, and waits for outstanding
// fan-out publishes up to the drain timeout. Calling Stop on a stopped
// watcher is a no-op.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	if !w.notifier.Drain(w.drainTimeout) {
		w.logger.WarnContext(context.Background(), "Notification drain timed out, abandoning outstanding publishes",
			"timeout", w.drainTimeout)
	}
	w.logger.InfoContext(context.Background(), "Change feed watcher stopped")
}

// State reports the watcher's current position in its lifecycle.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Watcher) setState(state State) {
	w.mu.Lock()
	w.state = state
	w.mu.Unlock()
	watcherState.Set(float64(state))
}

// run cycles connect/consume/backoff until ctx is cancelled. Cancellation is
// the shutdown signal: it is the one condition that exits without scheduling
// a reconnect.
func (w *Watcher) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer w.setState(StateDisconnected)

	for {
		w.setState(StateDisconnected)
		if err := w.feed.WaitReady(ctx); err != nil {
			return
		}

		w.setState(StateConnecting)
		cursor, err := w.feed.Watch(ctx, w.token)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.ErrorContext(ctx, "Change feed connect failed", "error", err)
			if !w.backoffWait(ctx) {
				return
			}
			continue
		}

		w.setState(StateActive)
		w.logger.InfoContext(ctx, "Change feed connected", "resuming", w.token != nil)

		err = w.consume(ctx, cursor)
		w.closeCursor(cursor)
		if ctx.Err() != nil {
			return
		}

		w.logger.ErrorContext(ctx, "Change feed stream failed", "error", err)
		watcherReconnects.Inc()
		if !w.backoffWait(ctx) {
			return
		}
	}
}

// consume delivers events sequentially until the stream fails or ctx is
// cancelled. The resume token advances only after an event is handed to the
// fan-out, so a reconnect replays anything committed after the last event
// subscribers could have seen.
func (w *Watcher) consume(ctx context.Context, cursor ports.OrderChangeCursor) error {
	for {
		snapshot, err := cursor.Next(ctx)
		if err != nil {
			return err
		}

		event := NewChangeEvent(snapshot)
		w.notifier.Notify(ctx, event)
		if w.integrations != nil {
			if err := w.integrations.PublishOrderChanged(event); err != nil {
				w.logger.ErrorContext(ctx, "Order change integration publish failed",
					"order_id", event.OrderID, "error", err)
			}
		}
		w.token = cursor.ResumeToken()
		watcherEvents.Inc()
	}
}

// backoffWait parks the watcher for the fixed reconnect delay. It returns
// false when the watcher is stopped while waiting.
func (w *Watcher) backoffWait(ctx context.Context) bool {
	w.setState(StateBackoff)
	select {
	case <-ctx.Done():
		return false
	case <-w.after(reconnectDelay):
		return true
	}
}

// closeCursor releases the cursor under its own deadline; the watcher ctx is
// usually already cancelled when this runs.
func (w *Watcher) closeCursor(cursor ports.OrderChangeCursor) {
	closeCtx, cancel := context.WithTimeout(context.Background(), cursorCloseTimeout)
	defer cancel()

	if err := cursor.Close(closeCtx); err != nil {
		w.logger.ErrorContext(closeCtx, "Change feed cursor close failed", "error", err)
	}
}
