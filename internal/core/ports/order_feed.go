package ports

import (
	"context"

	"dispatch/internal/core/domain/model/order"
)

// ResumeToken is an opaque position marker in the order change feed. The
// watcher persists the latest token across reconnects and hands it back to
// Watch to resume without losing events; it never inspects the bytes.
type ResumeToken []byte

// OrderFeed exposes the store's ordered change-notification stream for order
// documents. Events surface only committed writes, in commit order per
// stream.
type OrderFeed interface {
	// Watch opens a cursor over order changes. With a nil resumeAfter the
	// cursor starts at the current end of the feed; otherwise it resumes
	// delivery immediately after the given token.
	Watch(ctx context.Context, resumeAfter ResumeToken) (OrderChangeCursor, error)

	// WaitReady blocks until the backing store is reachable or the context
	// is done. The watcher parks here instead of spinning on Watch while
	// the store connection is down.
	WaitReady(ctx context.Context) error
}

// OrderChangeCursor iterates committed order changes. Cursors are not safe
// for concurrent use; the watcher owns a cursor for its whole lifetime.
type OrderChangeCursor interface {
	// Next blocks until the next changed order snapshot is available, the
	// stream fails, or the context is done. The returned order reflects the
	// full post-change document state.
	Next(ctx context.Context) (*order.Order, error)

	// ResumeToken returns the token of the last delivered change, nil before
	// the first delivery.
	ResumeToken() ResumeToken

	// Close releases the cursor. Safe to call after a failed Next.
	Close(ctx context.Context) error
}
