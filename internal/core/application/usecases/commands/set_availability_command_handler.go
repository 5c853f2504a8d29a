package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// SetAvailabilityCommandHandler updates the agent's online/offline switch.
type SetAvailabilityCommandHandler struct {
	agentStore ports.AgentStore
}

// NewSetAvailabilityCommandHandler creates a handler for availability changes.
func NewSetAvailabilityCommandHandler(agentStore ports.AgentStore) SetAvailabilityCommandHandler {
	return SetAvailabilityCommandHandler{
		agentStore: agentStore,
	}
}

// Handle resolves the agent profile for the requesting user and writes the
// switch. Repeating the current position is a no-op, not an error.
func (h SetAvailabilityCommandHandler) Handle(ctx context.Context, cmd SetAvailabilityCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	deliveryAgent, err := h.agentStore.GetByUserID(ctx, cmd.UserID())
	if err != nil {
		return err
	}

	return h.agentStore.SetAvailability(ctx, deliveryAgent.ID(), cmd.Available())
}
