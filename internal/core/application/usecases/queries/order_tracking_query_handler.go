package queries

import (
	"context"

	"dispatch/internal/core/ports"
)

// GetOrderTrackingQueryHandler builds the tracking view of a single order.
type GetOrderTrackingQueryHandler struct {
	orderStore ports.OrderStore
}

// NewGetOrderTrackingQueryHandler creates a handler for tracking queries.
func NewGetOrderTrackingQueryHandler(orderStore ports.OrderStore) GetOrderTrackingQueryHandler {
	return GetOrderTrackingQueryHandler{orderStore: orderStore}
}

// Handle returns the tracking read model for the order, including the full
// status ledger in append order.
func (h GetOrderTrackingQueryHandler) Handle(
	ctx context.Context,
	query GetOrderTrackingQuery,
) (GetOrderTrackingQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}

	trackedOrder, err := h.orderStore.Get(ctx, query.OrderID())
	if err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}

	history := trackedOrder.History()
	events := make([]TrackingEventResponse, 0, len(history))
	for _, entry := range history {
		events = append(events, TrackingEventResponse{
			Status:    entry.Status,
			Timestamp: entry.Timestamp,
			Location:  entry.Location,
			Note:      entry.Note,
		})
	}

	return GetOrderTrackingQueryResponse{
		ID:                    trackedOrder.ID(),
		CustomerID:            trackedOrder.CustomerID(),
		Status:                trackedOrder.Status(),
		AssignedAgent:         trackedOrder.AssignedAgent(),
		PickupLocation:        trackedOrder.PickupLocation(),
		EstimatedDeliveryTime: trackedOrder.EstimatedDeliveryTime(),
		ActualDeliveryTime:    trackedOrder.ActualDeliveryTime(),
		History:               events,
	}, nil
}
