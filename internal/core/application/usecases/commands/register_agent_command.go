package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrRegisterAgentCommandIsNotConstructed = errors.New(
	"RegisterAgentCommand must be created via NewRegisterAgentCommand constructor",
)

// RegisterAgentCommand represents creating a delivery-agent profile for a
// user account. At most one profile may exist per user; the registry
// enforces that at the store.
type RegisterAgentCommand struct { //nolint:recvcheck //using for validation
	agentID       kernel.UUID
	userID        kernel.UUID
	vehicleType   string
	vehicleNumber string

	guard guard.ConstructorGuard
}

// NewRegisterAgentCommand creates a command to register an agent profile.
// The agent id is minted by the caller so it can be returned to the client
// before the handler runs.
func NewRegisterAgentCommand(
	agentID kernel.UUID,
	userID kernel.UUID,
	vehicleType string,
	vehicleNumber string,
) (RegisterAgentCommand, error) {
	registerCommand := RegisterAgentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		registerCommand.setAgentID(agentID),
		registerCommand.setUserID(userID),
		registerCommand.setVehicleType(vehicleType),
		registerCommand.setVehicleNumber(vehicleNumber),
	); err != nil {
		return RegisterAgentCommand{}, err
	}

	return registerCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c RegisterAgentCommand) Validate() error {
	return c.guard.Validate(ErrRegisterAgentCommandIsNotConstructed)
}

// AgentID returns the identifier for the new agent profile.
func (c RegisterAgentCommand) AgentID() kernel.UUID {
	return c.agentID
}

// UserID returns the owning user account.
func (c RegisterAgentCommand) UserID() kernel.UUID {
	return c.userID
}

// VehicleType returns the registered vehicle type.
func (c RegisterAgentCommand) VehicleType() string {
	return c.vehicleType
}

// VehicleNumber returns the registered vehicle plate number.
func (c RegisterAgentCommand) VehicleNumber() string {
	return c.vehicleNumber
}

func (c *RegisterAgentCommand) setAgentID(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	c.agentID = agentID
	return nil
}

func (c *RegisterAgentCommand) setUserID(userID kernel.UUID) error {
	if err := userID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("userID", err)
	}

	c.userID = userID
	return nil
}

func (c *RegisterAgentCommand) setVehicleType(vehicleType string) error {
	if vehicleType == "" {
		return errs.NewValueIsRequiredError("vehicleType")
	}

	c.vehicleType = vehicleType
	return nil
}

func (c *RegisterAgentCommand) setVehicleNumber(vehicleNumber string) error {
	if vehicleNumber == "" {
		return errs.NewValueIsRequiredError("vehicleNumber")
	}

	c.vehicleNumber = vehicleNumber
	return nil
}
