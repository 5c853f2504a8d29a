package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrSetAvailabilityCommandIsNotConstructed = errors.New(
	"SetAvailabilityCommand must be created via NewSetAvailabilityCommand constructor",
)

// SetAvailabilityCommand represents an agent flipping their own
// online/offline switch. Going offline is also how agent profiles are
// deactivated; they are never deleted.
type SetAvailabilityCommand struct { //nolint:recvcheck //using for validation
	userID    kernel.UUID
	available bool

	guard guard.ConstructorGuard
}

// NewSetAvailabilityCommand creates a command to change availability.
func NewSetAvailabilityCommand(userID kernel.UUID, available bool) (SetAvailabilityCommand, error) {
	availabilityCommand := SetAvailabilityCommand{
		available: available,
		guard:     guard.NewConstructorGuard(),
	}

	if err := availabilityCommand.setUserID(userID); err != nil {
		return SetAvailabilityCommand{}, err
	}

	return availabilityCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c SetAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrSetAvailabilityCommandIsNotConstructed)
}

// UserID returns the requesting agent's user account id.
func (c SetAvailabilityCommand) UserID() kernel.UUID {
	return c.userID
}

// Available returns the requested switch position.
func (c SetAvailabilityCommand) Available() bool {
	return c.available
}

func (c *SetAvailabilityCommand) setUserID(userID kernel.UUID) error {
	if err := userID.Validate(); err != nil {
		return err
	}

	c.userID = userID
	return nil
}
