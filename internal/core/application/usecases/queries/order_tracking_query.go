package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var ErrGetOrderTrackingQueryIsNotConstructed = errors.New(
	"GetOrderTrackingQuery must be created via NewGetOrderTrackingQuery constructor",
)

// GetOrderTrackingQuery retrieves the tracking view of a single order: its
// current status, assignment, delivery estimates, and the full status ledger.
type GetOrderTrackingQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderTrackingQuery creates a query for the given order's tracking view.
func NewGetOrderTrackingQuery(orderID kernel.UUID) (GetOrderTrackingQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderTrackingQuery{}, err
	}

	return GetOrderTrackingQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderTrackingQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderTrackingQueryIsNotConstructed)
}

// OrderID returns the tracked order's id.
func (q GetOrderTrackingQuery) OrderID() kernel.UUID {
	return q.orderID
}

// TrackingEventResponse is one entry of the order's status ledger.
type TrackingEventResponse struct {
	Status    order.Status
	Timestamp time.Time
	Location  *kernel.GeoPoint
	Note      string
}

// GetOrderTrackingQueryResponse is the customer-facing tracking read model.
type GetOrderTrackingQueryResponse struct {
	ID                    kernel.UUID
	CustomerID            kernel.UUID
	Status                order.Status
	AssignedAgent         *kernel.UUID
	PickupLocation        *kernel.GeoPoint
	EstimatedDeliveryTime *time.Time
	ActualDeliveryTime    *time.Time
	History               []TrackingEventResponse
}
