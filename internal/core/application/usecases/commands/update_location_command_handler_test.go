package commands_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpdateLocationCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	userID := kernel.NewUUID()
	deliveryAgent := newEligibleAgent(t, userID)
	firstOrderID := kernel.NewUUID()
	secondOrderID := kernel.NewUUID()
	require.NoError(t, deliveryAgent.AddActiveOrder(firstOrderID))
	require.NoError(t, deliveryAgent.AddActiveOrder(secondOrderID))

	cmd, err := commands.NewUpdateLocationCommand(userID, 77.61, 12.98)
	require.NoError(t, err)

	store := new(MockAgentStore)
	store.On("GetByUserID", ctx, userID).Return(deliveryAgent, nil).Once()
	store.On("SetLocation", ctx, deliveryAgent.ID(), cmd.Location()).Return(nil).Once()

	broadcaster := new(MockBroadcaster)
	for _, orderID := range []kernel.UUID{firstOrderID, secondOrderID} {
		broadcaster.On("Publish", "order:"+orderID.String(), commands.AgentLocationNotice{
			Type:      "agent_location",
			AgentID:   deliveryAgent.ID().String(),
			OrderID:   orderID.String(),
			Longitude: 77.61,
			Latitude:  12.98,
		}).Return(nil).Once()
	}

	h := commands.NewUpdateLocationCommandHandler(store, broadcaster, discardLogger())
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	store.AssertExpectations(t)
	broadcaster.AssertExpectations(t)
}

func TestUpdateLocationCommandHandler_Handle_NoActiveOrders(t *testing.T) {
	ctx := t.Context()
	userID := kernel.NewUUID()
	deliveryAgent := newEligibleAgent(t, userID)

	cmd, err := commands.NewUpdateLocationCommand(userID, 77.61, 12.98)
	require.NoError(t, err)

	store := new(MockAgentStore)
	store.On("GetByUserID", ctx, userID).Return(deliveryAgent, nil).Once()
	store.On("SetLocation", ctx, deliveryAgent.ID(), cmd.Location()).Return(nil).Once()

	broadcaster := new(MockBroadcaster)

	h := commands.NewUpdateLocationCommandHandler(store, broadcaster, discardLogger())
	err = h.Handle(ctx, cmd)

	require.NoError(t, err)
	broadcaster.AssertNotCalled(t, "Publish")
}

func TestUpdateLocationCommandHandler_Handle_BroadcastFailureIsNotFatal(t *testing.T) {
	ctx := t.Context()
	userID := kernel.NewUUID()
	deliveryAgent := newEligibleAgent(t, userID)
	require.NoError(t, deliveryAgent.AddActiveOrder(kernel.NewUUID()))

	cmd, err := commands.NewUpdateLocationCommand(userID, 77.61, 12.98)
	require.NoError(t, err)

	store := new(MockAgentStore)
	store.On("GetByUserID", ctx, userID).Return(deliveryAgent, nil).Once()
	store.On("SetLocation", ctx, deliveryAgent.ID(), cmd.Location()).Return(nil).Once()

	broadcaster := new(MockBroadcaster)
	broadcaster.On("Publish", mock.Anything, mock.Anything).
		Return(errors.New("hub is gone")).Once()

	h := commands.NewUpdateLocationCommandHandler(store, broadcaster, discardLogger())
	err = h.Handle(ctx, cmd)

	require.NoError(t, err, "a failed push must not fail the position write")
	broadcaster.AssertExpectations(t)
}

func TestUpdateLocationCommandHandler_Handle_WriteFailure(t *testing.T) {
	ctx := t.Context()
	userID := kernel.NewUUID()
	deliveryAgent := newEligibleAgent(t, userID)
	require.NoError(t, deliveryAgent.AddActiveOrder(kernel.NewUUID()))

	cmd, err := commands.NewUpdateLocationCommand(userID, 77.61, 12.98)
	require.NoError(t, err)

	store := new(MockAgentStore)
	store.On("GetByUserID", ctx, userID).Return(deliveryAgent, nil).Once()
	store.On("SetLocation", ctx, deliveryAgent.ID(), cmd.Location()).
		Return(errs.NewObjectNotFoundError("agentID", deliveryAgent.ID().String())).Once()

	broadcaster := new(MockBroadcaster)

	h := commands.NewUpdateLocationCommandHandler(store, broadcaster, discardLogger())
	err = h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	broadcaster.AssertNotCalled(t, "Publish")
}

func TestNewUpdateLocationCommand_InvalidCoordinates(t *testing.T) {
	userID := kernel.NewUUID()

	_, err := commands.NewUpdateLocationCommand(userID, 181, 12.98)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	_, err = commands.NewUpdateLocationCommand(userID, 77.61, -91)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}
