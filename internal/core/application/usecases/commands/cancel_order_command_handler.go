package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// CancelOrderCommandHandler executes the confirmed -> cancelled transition.
// Cancellation races assignment on the same unassigned predicate: if an
// agent accepts first, the cancel loses with a conflict and vice versa.
type CancelOrderCommandHandler struct {
	orderStore ports.OrderStore
}

// NewCancelOrderCommandHandler creates a handler for order cancellation.
func NewCancelOrderCommandHandler(orderStore ports.OrderStore) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		orderStore: orderStore,
	}
}

// Handle processes the cancellation.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	cancelledOrder, err := h.orderStore.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = cancelledOrder.Cancel(cmd.Note()); err != nil {
		return err
	}

	return h.orderStore.UpdateIfUnassigned(ctx, cancelledOrder)
}
