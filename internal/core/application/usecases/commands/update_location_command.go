package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateLocationCommandIsNotConstructed = errors.New(
	"UpdateLocationCommand must be created via NewUpdateLocationCommand constructor",
)

// UpdateLocationCommand represents an agent reporting their current
// position. Only the latest position is kept; there is no positional
// history.
type UpdateLocationCommand struct { //nolint:recvcheck //using for validation
	userID   kernel.UUID
	location kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewUpdateLocationCommand creates a command to report a position.
// Coordinates are longitude first, matching the persisted GeoJSON pair order.
func NewUpdateLocationCommand(userID kernel.UUID, longitude, latitude float64) (UpdateLocationCommand, error) {
	locationCommand := UpdateLocationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		locationCommand.setUserID(userID),
		locationCommand.setLocation(longitude, latitude),
	); err != nil {
		return UpdateLocationCommand{}, err
	}

	return locationCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateLocationCommandIsNotConstructed)
}

// UserID returns the reporting agent's user account id.
func (c UpdateLocationCommand) UserID() kernel.UUID {
	return c.userID
}

// Location returns the validated position.
func (c UpdateLocationCommand) Location() kernel.GeoPoint {
	return c.location
}

func (c *UpdateLocationCommand) setUserID(userID kernel.UUID) error {
	if err := userID.Validate(); err != nil {
		return err
	}

	c.userID = userID
	return nil
}

func (c *UpdateLocationCommand) setLocation(longitude, latitude float64) error {
	location, err := kernel.NewGeoPoint(longitude, latitude)
	if err != nil {
		return err
	}

	c.location = location
	return nil
}
