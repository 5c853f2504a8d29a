package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRejectOrderCommandIsNotConstructed = errors.New(
	"RejectOrderCommand must be created via NewRejectOrderCommand constructor",
)

// RejectOrderCommand represents a delivery agent declining a confirmed
// order. Rejection only updates the agent's rejection memory; the order
// itself stays confirmed and available to other agents.
type RejectOrderCommand struct { //nolint:recvcheck //using for validation
	userID  kernel.UUID
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRejectOrderCommand creates a command for an agent to decline an order.
func NewRejectOrderCommand(userID kernel.UUID, orderID kernel.UUID) (RejectOrderCommand, error) {
	rejectCommand := RejectOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		rejectCommand.setUserID(userID),
		rejectCommand.setOrderID(orderID),
	); err != nil {
		return RejectOrderCommand{}, err
	}

	return rejectCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c RejectOrderCommand) Validate() error {
	return c.guard.Validate(ErrRejectOrderCommandIsNotConstructed)
}

// UserID returns the requesting agent's user account id.
func (c RejectOrderCommand) UserID() kernel.UUID {
	return c.userID
}

// OrderID returns the order to decline.
func (c RejectOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c *RejectOrderCommand) setUserID(userID kernel.UUID) error {
	if err := userID.Validate(); err != nil {
		return err
	}

	c.userID = userID
	return nil
}

func (c *RejectOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}
