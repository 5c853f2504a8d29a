package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderStore struct{ mock.Mock }

func (m *MockOrderStore) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderStore) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderStore) UpdateIfUnassigned(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderStore) UpdateIfAssignedTo(ctx context.Context, o *order.Order, agentID kernel.UUID) error {
	args := m.Called(ctx, o, agentID)
	return args.Error(0)
}

func (m *MockOrderStore) FindConfirmedUnassigned(
	ctx context.Context,
	near kernel.GeoPoint,
	radiusMeters float64,
	excludeIDs []kernel.UUID,
	includeAll bool,
) ([]*order.Order, error) {
	args := m.Called(ctx, near, radiusMeters, excludeIDs, includeAll)
	if orders := args.Get(0); orders != nil {
		return orders.([]*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderStore) FindActiveByAgent(ctx context.Context, agentID kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, agentID)
	if orders := args.Get(0); orders != nil {
		return orders.([]*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderStore) FindOverdueOutForDelivery(ctx context.Context, asOf time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, asOf)
	if orders := args.Get(0); orders != nil {
		return orders.([]*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAgentStore struct{ mock.Mock }

func (m *MockAgentStore) Add(ctx context.Context, a *agent.DeliveryAgent) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAgentStore) Get(ctx context.Context, id kernel.UUID) (*agent.DeliveryAgent, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*agent.DeliveryAgent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAgentStore) GetByUserID(ctx context.Context, userID kernel.UUID) (*agent.DeliveryAgent, error) {
	args := m.Called(ctx, userID)
	if a := args.Get(0); a != nil {
		return a.(*agent.DeliveryAgent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAgentStore) SetAvailability(ctx context.Context, agentID kernel.UUID, available bool) error {
	args := m.Called(ctx, agentID, available)
	return args.Error(0)
}

func (m *MockAgentStore) SetVerification(ctx context.Context, agentID kernel.UUID, verified bool) error {
	args := m.Called(ctx, agentID, verified)
	return args.Error(0)
}

func (m *MockAgentStore) SetLocation(ctx context.Context, agentID kernel.UUID, location kernel.GeoPoint) error {
	args := m.Called(ctx, agentID, location)
	return args.Error(0)
}

func (m *MockAgentStore) AddActiveOrder(ctx context.Context, agentID kernel.UUID, orderID kernel.UUID) error {
	args := m.Called(ctx, agentID, orderID)
	return args.Error(0)
}

func (m *MockAgentStore) AddRejectedOrder(ctx context.Context, agentID kernel.UUID, orderID kernel.UUID) error {
	args := m.Called(ctx, agentID, orderID)
	return args.Error(0)
}

func (m *MockAgentStore) CompleteActiveOrder(ctx context.Context, agentID kernel.UUID, orderID kernel.UUID) error {
	args := m.Called(ctx, agentID, orderID)
	return args.Error(0)
}

// One degree of latitude spans a near-constant distance; moving an order
// north by meters/metersPerDegreeLatitude degrees places its pickup at a
// known great-circle distance from the reference point.
const metersPerDegreeLatitude = 111194.93

func mustGeoPoint(t *testing.T, longitude, latitude float64) kernel.GeoPoint {
	t.Helper()
	point, err := kernel.NewGeoPoint(longitude, latitude)
	require.NoError(t, err)
	return point
}

func newOrderNorthOf(t *testing.T, from kernel.GeoPoint, meters float64) *order.Order {
	t.Helper()
	pickup := mustGeoPoint(t, from.Longitude(), from.Latitude()+meters/metersPerDegreeLatitude)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), pickup)
	require.NoError(t, err)
	return o
}

func newLocatedAgent(t *testing.T, userID kernel.UUID, location kernel.GeoPoint) *agent.DeliveryAgent {
	t.Helper()
	a, err := agent.NewDeliveryAgent(kernel.NewUUID(), userID, "bike", "KA-01-AB-1234")
	require.NoError(t, err)
	a.SetVerification(true)
	a.SetAvailability(true)
	require.NoError(t, a.SetLocation(location))
	return a
}
