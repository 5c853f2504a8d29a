package commands

import (
	"context"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/ports"
)

// RegisterAgentCommandHandler creates new delivery-agent profiles. A fresh
// profile starts unavailable and unverified; the agent goes online via
// SetAvailability and an administrator grants verification separately.
type RegisterAgentCommandHandler struct {
	agentStore ports.AgentStore
}

// NewRegisterAgentCommandHandler creates a handler for agent registration.
func NewRegisterAgentCommandHandler(agentStore ports.AgentStore) RegisterAgentCommandHandler {
	return RegisterAgentCommandHandler{
		agentStore: agentStore,
	}
}

// Handle processes the registration. A second profile for the same user
// surfaces as the store's conflict error.
func (h RegisterAgentCommandHandler) Handle(ctx context.Context, cmd RegisterAgentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	deliveryAgent, err := agent.NewDeliveryAgent(
		cmd.AgentID(), cmd.UserID(), cmd.VehicleType(), cmd.VehicleNumber())
	if err != nil {
		return err
	}

	return h.agentStore.Add(ctx, deliveryAgent)
}
