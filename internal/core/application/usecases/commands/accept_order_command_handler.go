package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// AcceptOrderCommandHandler executes the confirmed -> out_for_delivery
// transition for a requesting agent.
//
// The assignment is exclusive: after the in-memory transition the handler
// persists through the store's check-and-set on the unassigned predicate, so
// of N agents racing for the same order exactly one write lands and the rest
// get a conflict error. The loser is expected to re-query candidates.
//
// Example:
//
//	handler := NewAcceptOrderCommandHandler(orderStore, agentStore)
//	cmd, _ := NewAcceptOrderCommand(userID, orderID)
//	err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrPreconditionFailed):
//	    // agent ineligible or order not acceptable
//	case errors.Is(err, errs.ErrConflict):
//	    // another agent won; refresh the listing
//	case err != nil:
//	    // infrastructure failure
//	}
type AcceptOrderCommandHandler struct {
	orderStore ports.OrderStore
	agentStore ports.AgentStore
}

// NewAcceptOrderCommandHandler creates a handler for order acceptance.
func NewAcceptOrderCommandHandler(orderStore ports.OrderStore, agentStore ports.AgentStore) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{
		orderStore: orderStore,
		agentStore: agentStore,
	}
}

// Handle processes the acceptance. Eligibility gates are checked before the
// order is touched, so an unverified agent gets the precondition failure even
// for a nonexistent order. The active-set append follows the winning
// check-and-set; the order document is the source of truth for assignment.
func (h AcceptOrderCommandHandler) Handle(ctx context.Context, cmd AcceptOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	deliveryAgent, err := h.agentStore.GetByUserID(ctx, cmd.UserID())
	if err != nil {
		return err
	}

	if err = deliveryAgent.ValidateCanAcceptOrder(); err != nil {
		return err
	}

	acceptedOrder, err := h.orderStore.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = acceptedOrder.Assign(deliveryAgent.ID(), deliveryAgent.CurrentLocation()); err != nil {
		return err
	}

	if err = h.orderStore.UpdateIfUnassigned(ctx, acceptedOrder); err != nil {
		return err
	}

	return h.agentStore.AddActiveOrder(ctx, deliveryAgent.ID(), acceptedOrder.ID())
}
