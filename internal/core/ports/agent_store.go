// Package ports defines the storage and transport contracts for the dispatch
// domain. These interfaces establish contracts between the domain layer and
// infrastructure, enabling dependency inversion and testability.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
)

// AgentStore defines the persistence contract for delivery-agent aggregates.
//
// Besides whole-aggregate Add and Get, the contract exposes field-scoped
// update operations. Each of those mutates exactly one agent document
// atomically, so concurrent lifecycle transitions touching the same agent
// (an accept racing a location update, two completions) cannot lose a
// collection append or removal to a read-modify-write cycle.
type AgentStore interface {
	// Add persists a newly registered agent aggregate.
	// At most one agent may exist per user: a second profile for the same
	// userID fails with a conflict error.
	Add(ctx context.Context, aggregate *agent.DeliveryAgent) error

	// Get retrieves an agent aggregate by its unique identifier.
	// Returns an object-not-found error when no such agent exists.
	Get(ctx context.Context, id kernel.UUID) (*agent.DeliveryAgent, error)

	// GetByUserID retrieves the agent profile owned by the given user.
	// Returns an object-not-found error when the user has no profile.
	GetByUserID(ctx context.Context, userID kernel.UUID) (*agent.DeliveryAgent, error)

	// SetAvailability updates the agent's online/offline switch.
	SetAvailability(ctx context.Context, agentID kernel.UUID, available bool) error

	// SetVerification updates the administrative verification gate.
	SetVerification(ctx context.Context, agentID kernel.UUID, verified bool) error

	// SetLocation overwrites the agent's current position.
	SetLocation(ctx context.Context, agentID kernel.UUID, location kernel.GeoPoint) error

	// AddActiveOrder appends the order to the agent's active set.
	// The set has set semantics: adding a held order is a no-op.
	AddActiveOrder(ctx context.Context, agentID kernel.UUID, orderID kernel.UUID) error

	// AddRejectedOrder appends the order to the agent's rejection memory.
	// Set semantics: a duplicate reject is a no-op, not an error.
	AddRejectedOrder(ctx context.Context, agentID kernel.UUID, orderID kernel.UUID) error

	// CompleteActiveOrder atomically moves the order from the agent's active
	// set to the end of the delivery history. The move happens in a single
	// document update so no interleaving can observe the order in both
	// collections or in neither.
	CompleteActiveOrder(ctx context.Context, agentID kernel.UUID, orderID kernel.UUID) error
}
