package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// CompleteOrderCommandHandler executes the out_for_delivery -> delivered
// transition. Only the assigned agent may complete an order; anyone else
// gets a forbidden error from the aggregate with the order unchanged.
type CompleteOrderCommandHandler struct {
	orderStore ports.OrderStore
	agentStore ports.AgentStore
}

// NewCompleteOrderCommandHandler creates a handler for order completion.
func NewCompleteOrderCommandHandler(orderStore ports.OrderStore, agentStore ports.AgentStore) CompleteOrderCommandHandler {
	return CompleteOrderCommandHandler{
		orderStore: orderStore,
		agentStore: agentStore,
	}
}

// Handle processes the completion. The persist goes through the store's
// check-and-set on the holder predicate, so a stale snapshot cannot
// overwrite a concurrent transition. On success the order id moves from the
// agent's active set to the delivery history.
func (h CompleteOrderCommandHandler) Handle(ctx context.Context, cmd CompleteOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	deliveryAgent, err := h.agentStore.GetByUserID(ctx, cmd.UserID())
	if err != nil {
		return err
	}

	completedOrder, err := h.orderStore.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = completedOrder.Complete(deliveryAgent.ID(), deliveryAgent.CurrentLocation()); err != nil {
		return err
	}

	if err = h.orderStore.UpdateIfAssignedTo(ctx, completedOrder, deliveryAgent.ID()); err != nil {
		return err
	}

	return h.agentStore.CompleteActiveOrder(ctx, deliveryAgent.ID(), completedOrder.ID())
}
