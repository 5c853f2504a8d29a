// Package queries contains read operations for retrieving dispatch state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return read models shaped for their callers and never mutate
// anything; handlers compose them from the store ports and the geo matcher.
package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetAgentProfileQueryIsNotConstructed = errors.New(
	"GetAgentProfileQuery must be created via NewGetAgentProfileQuery constructor",
)

// GetAgentProfileQuery retrieves the delivery-agent profile owned by a user
// account. Agents see their own profile; there is at most one per user.
type GetAgentProfileQuery struct {
	userID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetAgentProfileQuery creates a query for the profile of the given user.
func NewGetAgentProfileQuery(userID kernel.UUID) (GetAgentProfileQuery, error) {
	if err := userID.Validate(); err != nil {
		return GetAgentProfileQuery{}, err
	}

	return GetAgentProfileQuery{
		userID: userID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetAgentProfileQuery) Validate() error {
	return q.guard.Validate(ErrGetAgentProfileQueryIsNotConstructed)
}

// UserID returns the owning user account id.
func (q GetAgentProfileQuery) UserID() kernel.UUID {
	return q.userID
}

// GetAgentProfileQueryResponse is the agent-facing profile read model.
type GetAgentProfileQueryResponse struct {
	ID                  kernel.UUID
	UserID              kernel.UUID
	VehicleType         string
	VehicleNumber       string
	IsAvailable         bool
	IsVerified          bool
	CurrentLocation     *kernel.GeoPoint
	ActiveOrders        []kernel.UUID
	Rating              float64
	TotalRatings        int
	CompletedDeliveries int
}
