package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrVerifyAgentCommandIsNotConstructed = errors.New(
	"VerifyAgentCommand must be created via NewVerifyAgentCommand constructor",
)

// VerifyAgentCommand represents an administrator granting or revoking the
// verification gate on an agent profile. Administrative decisions carry no
// domain guard; authorization happens before the command is built.
type VerifyAgentCommand struct { //nolint:recvcheck //using for validation
	agentID  kernel.UUID
	verified bool

	guard guard.ConstructorGuard
}

// NewVerifyAgentCommand creates a command to change verification.
func NewVerifyAgentCommand(agentID kernel.UUID, verified bool) (VerifyAgentCommand, error) {
	verifyCommand := VerifyAgentCommand{
		verified: verified,
		guard:    guard.NewConstructorGuard(),
	}

	if err := verifyCommand.setAgentID(agentID); err != nil {
		return VerifyAgentCommand{}, err
	}

	return verifyCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c VerifyAgentCommand) Validate() error {
	return c.guard.Validate(ErrVerifyAgentCommandIsNotConstructed)
}

// AgentID returns the agent profile to verify.
func (c VerifyAgentCommand) AgentID() kernel.UUID {
	return c.agentID
}

// Verified returns the requested gate position.
func (c VerifyAgentCommand) Verified() bool {
	return c.verified
}

func (c *VerifyAgentCommand) setAgentID(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	c.agentID = agentID
	return nil
}
