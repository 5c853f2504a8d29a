package memstore

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ErrCursorClosed is returned by Next on a cursor that was closed.
var ErrCursorClosed = errors.New("order change cursor is closed")

// OrderFeed is an in-memory ports.OrderFeed. It retains every emitted change
// so cursors can resume from any token, and exposes the failure hooks the
// watcher tests need: Interrupt fails all open cursors the way a dropped
// stream would, SetReady models the store connection going down and up.
type OrderFeed struct {
	mu      sync.Mutex
	log     []*order.Order
	notify  chan struct{}
	cursors map[*orderChangeCursor]struct{}

	ready   bool
	readyCh chan struct{}
}

// NewOrderFeed creates an empty feed in the ready state.
func NewOrderFeed() *OrderFeed {
	readyCh := make(chan struct{})
	close(readyCh)
	return &OrderFeed{
		notify:  make(chan struct{}),
		cursors: make(map[*orderChangeCursor]struct{}),
		ready:   true,
		readyCh: readyCh,
	}
}

// Watch opens a cursor at the current feed end, or right after resumeAfter.
func (f *OrderFeed) Watch(ctx context.Context, resumeAfter ports.ResumeToken) (ports.OrderChangeCursor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	position := len(f.log)
	if resumeAfter != nil {
		if len(resumeAfter) != 8 {
			return nil, errs.NewValueIsInvalidError("resumeToken")
		}
		resumed := int(binary.BigEndian.Uint64(resumeAfter))
		if resumed >= len(f.log) {
			return nil, errs.NewValueIsInvalidError("resumeToken")
		}
		position = resumed + 1
	}

	cursor := &orderChangeCursor{
		feed:     f,
		position: position,
		done:     make(chan struct{}),
	}
	f.cursors[cursor] = struct{}{}
	return cursor, nil
}

// WaitReady blocks until the feed's backing store is marked ready.
func (f *OrderFeed) WaitReady(ctx context.Context) error {
	for {
		f.mu.Lock()
		if f.ready {
			f.mu.Unlock()
			return nil
		}
		readyCh := f.readyCh
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-readyCh:
		}
	}
}

// SetReady flips the modeled store connection. While not ready, WaitReady
// parks its callers; flipping back releases them.
func (f *OrderFeed) SetReady(ready bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ready == f.ready {
		return
	}

	f.ready = ready
	if ready {
		close(f.readyCh)
	} else {
		f.readyCh = make(chan struct{})
	}
}

// Interrupt fails every open cursor with the given error, as a dropped
// change stream does. Cursors opened afterwards are unaffected.
func (f *OrderFeed) Interrupt(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for cursor := range f.cursors {
		cursor.failure = err
	}
	f.wake()
}

// emit appends a committed snapshot and wakes blocked cursors.
func (f *OrderFeed) emit(snapshot *order.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.log = append(f.log, snapshot)
	f.wake()
}

// wake broadcasts to blocked Next calls; the caller holds the feed lock.
func (f *OrderFeed) wake() {
	close(f.notify)
	f.notify = make(chan struct{})
}

type orderChangeCursor struct {
	feed      *OrderFeed
	position  int
	token     ports.ResumeToken
	failure   error
	done      chan struct{}
	closeOnce sync.Once
}

// Next blocks until a change is available, the cursor fails, or ctx is done.
func (c *orderChangeCursor) Next(ctx context.Context) (*order.Order, error) {
	for {
		c.feed.mu.Lock()
		if c.failure != nil {
			err := c.failure
			c.feed.mu.Unlock()
			return nil, err
		}

		if c.position < len(c.feed.log) {
			snapshot := c.feed.log[c.position]
			token := make(ports.ResumeToken, 8)
			binary.BigEndian.PutUint64(token, uint64(c.position))
			c.token = token
			c.position++
			c.feed.mu.Unlock()
			return cloneOrder(snapshot)
		}
		notify := c.feed.notify
		c.feed.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.done:
			return nil, ErrCursorClosed
		case <-notify:
		}
	}
}

// ResumeToken returns the token of the last delivered change.
func (c *orderChangeCursor) ResumeToken() ports.ResumeToken {
	c.feed.mu.Lock()
	defer c.feed.mu.Unlock()
	return c.token
}

// Close releases the cursor and wakes a blocked Next.
func (c *orderChangeCursor) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.feed.mu.Lock()
		delete(c.feed.cursors, c)
		c.feed.mu.Unlock()
	})
	return nil
}
