package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// VerifyAgentCommandHandler applies administrative verification decisions.
type VerifyAgentCommandHandler struct {
	agentStore ports.AgentStore
}

// NewVerifyAgentCommandHandler creates a handler for verification changes.
func NewVerifyAgentCommandHandler(agentStore ports.AgentStore) VerifyAgentCommandHandler {
	return VerifyAgentCommandHandler{
		agentStore: agentStore,
	}
}

// Handle writes the verification gate. The agent is addressed directly by
// profile id, not by user: administrators act on profiles.
func (h VerifyAgentCommandHandler) Handle(ctx context.Context, cmd VerifyAgentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	return h.agentStore.SetVerification(ctx, cmd.AgentID(), cmd.Verified())
}
