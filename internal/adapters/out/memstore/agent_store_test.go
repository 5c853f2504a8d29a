package memstore_test

import (
	"sync"
	"testing"

	"dispatch/internal/adapters/out/memstore"
	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegisteredAgent(t *testing.T) *agent.DeliveryAgent {
	t.Helper()
	a, err := agent.NewDeliveryAgent(kernel.NewUUID(), kernel.NewUUID(), "bike", "KA-01-AB-1234")
	require.NoError(t, err)
	return a
}

func TestAgentStore_AddAndGet(t *testing.T) {
	ctx := t.Context()
	store := memstore.NewAgentStore()
	registered := newRegisteredAgent(t)

	require.NoError(t, store.Add(ctx, registered))

	byID, err := store.Get(ctx, registered.ID())
	require.NoError(t, err)
	assert.True(t, byID.IsEqual(registered))

	byUser, err := store.GetByUserID(ctx, registered.UserID())
	require.NoError(t, err)
	assert.True(t, byUser.IsEqual(registered))
}

func TestAgentStore_Add_OneProfilePerUser(t *testing.T) {
	ctx := t.Context()
	store := memstore.NewAgentStore()
	registered := newRegisteredAgent(t)
	require.NoError(t, store.Add(ctx, registered))

	second, err := agent.NewDeliveryAgent(
		kernel.NewUUID(), registered.UserID(), "scooter", "KA-02-CD-5678")
	require.NoError(t, err)

	err = store.Add(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConflict)

	_, err = store.Get(ctx, second.ID())
	assert.ErrorIs(t, err, errs.ErrObjectNotFound, "the rejected profile is not stored")
}

func TestAgentStore_Get_NotFound(t *testing.T) {
	ctx := t.Context()
	store := memstore.NewAgentStore()

	_, err := store.Get(ctx, kernel.NewUUID())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)

	_, err = store.GetByUserID(ctx, kernel.NewUUID())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestAgentStore_FieldUpdates(t *testing.T) {
	ctx := t.Context()
	store := memstore.NewAgentStore()
	registered := newRegisteredAgent(t)
	require.NoError(t, store.Add(ctx, registered))

	require.NoError(t, store.SetAvailability(ctx, registered.ID(), true))
	require.NoError(t, store.SetVerification(ctx, registered.ID(), true))
	location := mustGeoPoint(t, 77.5946, 12.9716)
	require.NoError(t, store.SetLocation(ctx, registered.ID(), location))

	loaded, err := store.Get(ctx, registered.ID())
	require.NoError(t, err)
	assert.True(t, loaded.IsAvailable())
	assert.True(t, loaded.IsVerified())
	require.NotNil(t, loaded.CurrentLocation())
	sameSpot, err := loaded.CurrentLocation().IsEqual(location)
	require.NoError(t, err)
	assert.True(t, sameSpot)
}

func TestAgentStore_FieldUpdates_UnknownAgent(t *testing.T) {
	ctx := t.Context()
	store := memstore.NewAgentStore()

	err := store.SetAvailability(ctx, kernel.NewUUID(), true)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestAgentStore_OrderSets(t *testing.T) {
	ctx := t.Context()
	store := memstore.NewAgentStore()
	registered := newRegisteredAgent(t)
	require.NoError(t, store.Add(ctx, registered))
	orderID := kernel.NewUUID()

	t.Run("should add an active order once", func(t *testing.T) {
		require.NoError(t, store.AddActiveOrder(ctx, registered.ID(), orderID))
		require.NoError(t, store.AddActiveOrder(ctx, registered.ID(), orderID))

		loaded, err := store.Get(ctx, registered.ID())
		require.NoError(t, err)
		assert.Equal(t, []kernel.UUID{orderID}, loaded.ActiveOrders())
	})

	t.Run("should remember a rejection once", func(t *testing.T) {
		rejectedID := kernel.NewUUID()
		require.NoError(t, store.AddRejectedOrder(ctx, registered.ID(), rejectedID))
		require.NoError(t, store.AddRejectedOrder(ctx, registered.ID(), rejectedID))

		loaded, err := store.Get(ctx, registered.ID())
		require.NoError(t, err)
		assert.Equal(t, []kernel.UUID{rejectedID}, loaded.RejectedOrders())
	})

	t.Run("should move a completed order to the history", func(t *testing.T) {
		require.NoError(t, store.CompleteActiveOrder(ctx, registered.ID(), orderID))

		loaded, err := store.Get(ctx, registered.ID())
		require.NoError(t, err)
		assert.Empty(t, loaded.ActiveOrders())
		assert.Equal(t, []kernel.UUID{orderID}, loaded.DeliveryHistory())
	})

	t.Run("should fail the precondition for an order not held", func(t *testing.T) {
		err := store.CompleteActiveOrder(ctx, registered.ID(), kernel.NewUUID())
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrPreconditionFailed)
	})
}

func TestAgentStore_ConcurrentActiveOrderAppends(t *testing.T) {
	ctx := t.Context()
	store := memstore.NewAgentStore()
	registered := newRegisteredAgent(t)
	require.NoError(t, store.Add(ctx, registered))

	const appends = 24
	orderIDs := make([]kernel.UUID, appends)
	for i := range orderIDs {
		orderIDs[i] = kernel.NewUUID()
	}

	var wg sync.WaitGroup
	for _, orderID := range orderIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.AddActiveOrder(ctx, registered.ID(), orderID))
		}()
	}
	wg.Wait()

	loaded, err := store.Get(ctx, registered.ID())
	require.NoError(t, err)
	assert.Len(t, loaded.ActiveOrders(), appends, "no append may be lost to interleaving")
}
