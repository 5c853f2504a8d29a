package commands

import (
	"context"
	"fmt"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// RejectOrderCommandHandler records that an agent declined an order, keeping
// it out of that agent's future candidate listings. The order is left
// untouched and remains available to every other agent.
type RejectOrderCommandHandler struct {
	orderStore ports.OrderStore
	agentStore ports.AgentStore
}

// NewRejectOrderCommandHandler creates a handler for order rejection.
func NewRejectOrderCommandHandler(orderStore ports.OrderStore, agentStore ports.AgentStore) RejectOrderCommandHandler {
	return RejectOrderCommandHandler{
		orderStore: orderStore,
		agentStore: agentStore,
	}
}

// Handle processes the rejection. The same gates apply as for acceptance:
// the agent must be eligible and the order must still be confirmed and
// unassigned. Rejection is idempotent; declining the same order twice is a
// no-op, not an error.
func (h RejectOrderCommandHandler) Handle(ctx context.Context, cmd RejectOrderCommand) error {
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

	rejectedOrder, err := h.orderStore.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if rejectedOrder.Status() != order.Confirmed || rejectedOrder.AssignedAgent() != nil {
		return errs.NewPreconditionFailedError(
			fmt.Sprintf("%s is not a valid status to reject", rejectedOrder.Status()))
	}

	return h.agentStore.AddRejectedOrder(ctx, deliveryAgent.ID(), rejectedOrder.ID())
}
