package queries_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrderTrackingQueryHandler_Handle_DeliveredOrder(t *testing.T) {
	ctx := t.Context()
	pickup := mustGeoPoint(t, 77.5946, 12.9716)
	customerID := kernel.NewUUID()
	agentID := kernel.NewUUID()
	agentLocation := mustGeoPoint(t, 77.6, 12.97)

	trackedOrder, err := order.NewOrder(kernel.NewUUID(), customerID, pickup)
	require.NoError(t, err)
	require.NoError(t, trackedOrder.Assign(agentID, &agentLocation))
	require.NoError(t, trackedOrder.Complete(agentID, &agentLocation))

	query, err := queries.NewGetOrderTrackingQuery(trackedOrder.ID())
	require.NoError(t, err)

	store := new(MockOrderStore)
	store.On("Get", ctx, trackedOrder.ID()).Return(trackedOrder, nil).Once()

	h := queries.NewGetOrderTrackingQueryHandler(store)
	result, err := h.Handle(ctx, query)

	require.NoError(t, err)
	store.AssertExpectations(t)

	assert.Equal(t, trackedOrder.ID(), result.ID)
	assert.Equal(t, customerID, result.CustomerID)
	assert.Equal(t, order.Delivered, result.Status)
	require.NotNil(t, result.AssignedAgent)
	assert.Equal(t, agentID, *result.AssignedAgent)
	require.NotNil(t, result.PickupLocation)
	samePickup, err := result.PickupLocation.IsEqual(pickup)
	require.NoError(t, err)
	assert.True(t, samePickup)
	assert.NotNil(t, result.EstimatedDeliveryTime)
	assert.NotNil(t, result.ActualDeliveryTime)

	require.Len(t, result.History, 3, "one ledger entry per transition")
	assert.Equal(t, order.Confirmed, result.History[0].Status)
	assert.Equal(t, order.OutForDelivery, result.History[1].Status)
	assert.Equal(t, order.Delivered, result.History[2].Status)
	for i := 1; i < len(result.History); i++ {
		assert.False(t, result.History[i].Timestamp.Before(result.History[i-1].Timestamp),
			"ledger must stay in append order")
	}
}

func TestGetOrderTrackingQueryHandler_Handle_FreshOrder(t *testing.T) {
	ctx := t.Context()
	trackedOrder, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(), mustGeoPoint(t, 77.5946, 12.9716))
	require.NoError(t, err)

	query, err := queries.NewGetOrderTrackingQuery(trackedOrder.ID())
	require.NoError(t, err)

	store := new(MockOrderStore)
	store.On("Get", ctx, trackedOrder.ID()).Return(trackedOrder, nil).Once()

	h := queries.NewGetOrderTrackingQueryHandler(store)
	result, err := h.Handle(ctx, query)

	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, result.Status)
	assert.Nil(t, result.AssignedAgent)
	assert.Nil(t, result.EstimatedDeliveryTime)
	assert.Nil(t, result.ActualDeliveryTime)
	require.Len(t, result.History, 1)
	assert.Equal(t, "order confirmed", result.History[0].Note)
}

func TestGetOrderTrackingQueryHandler_Handle_OrderNotFound(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	query, err := queries.NewGetOrderTrackingQuery(orderID)
	require.NoError(t, err)

	store := new(MockOrderStore)
	store.On("Get", ctx, orderID).
		Return(nil, errs.NewObjectNotFoundError("orderID", orderID.String())).Once()

	h := queries.NewGetOrderTrackingQueryHandler(store)
	_, err = h.Handle(ctx, query)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}
