package commands

import (
	"context"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// CreateOrderCommandHandler handles the business logic for order ingest.
// Creates the order in confirmed status, ready for candidate listings and
// assignment.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(orderStore)
//	cmd, _ := NewCreateOrderCommand(orderID, customerID, 77.5946, 12.9716)
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order ingest failed: %w", err)
//	}
//	// Order is now visible to nearby agents
type CreateOrderCommandHandler struct {
	orderStore ports.OrderStore
}

// NewCreateOrderCommandHandler creates a handler for order ingest operations.
func NewCreateOrderCommandHandler(orderStore ports.OrderStore) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		orderStore: orderStore,
	}
}

// Handle processes the order ingest command. A duplicate order id surfaces
// as the store's conflict error.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	newOrder, err := order.NewOrder(cmd.OrderID(), cmd.CustomerID(), cmd.Pickup())
	if err != nil {
		return err
	}

	return h.orderStore.Add(ctx, newOrder)
}
