package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderStore defines the persistence contract for order aggregates.
//
// Exclusive assignment rests on the two conditional updates: they persist the
// aggregate only while a predicate still holds on the stored document, in one
// atomic check-and-set. The losing side of a race gets a conflict error and
// never silently overwrites the winner.
type OrderStore interface {
	// Add persists a new order aggregate.
	// Re-adding an existing order id fails with a conflict error.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns an object-not-found error when no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// UpdateIfUnassigned persists the aggregate's state only if the stored
	// order still has no assigned agent. When another assignment (or a
	// cancellation) won the race, it fails with a conflict error and writes
	// nothing. Used for the assign and cancel transitions.
	UpdateIfUnassigned(ctx context.Context, aggregate *order.Order) error

	// UpdateIfAssignedTo persists the aggregate's state only if the stored
	// order is out for delivery and held by the given agent. Fails with a
	// conflict error otherwise. Used for the complete transition.
	UpdateIfAssignedTo(ctx context.Context, aggregate *order.Order, agentID kernel.UUID) error

	// FindConfirmedUnassigned retrieves confirmed, unassigned orders for a
	// candidate listing, excluding the given order ids (the agent's
	// rejections). The radius cutoff around near is the store's coarse
	// geo filter; includeAll skips that cutoff at the query stage so every
	// candidate reaches the ranking regardless of distance. Precise
	// distance annotation stays with the domain matcher.
	FindConfirmedUnassigned(
		ctx context.Context,
		near kernel.GeoPoint,
		radiusMeters float64,
		excludeIDs []kernel.UUID,
		includeAll bool,
	) ([]*order.Order, error)

	// FindActiveByAgent retrieves the out-for-delivery orders held by the
	// given agent.
	FindActiveByAgent(ctx context.Context, agentID kernel.UUID) ([]*order.Order, error)

	// FindOverdueOutForDelivery retrieves out-for-delivery orders whose
	// estimated delivery time passed before asOf.
	FindOverdueOutForDelivery(ctx context.Context, asOf time.Time) ([]*order.Order, error)
}
