package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrGetNearbyOrdersQueryIsNotConstructed = errors.New(
	"GetNearbyOrdersQuery must be created via NewGetNearbyOrdersQuery constructor",
)

// GetNearbyOrdersQuery retrieves the delivery opportunities around the
// requesting agent: confirmed unassigned orders the agent has not rejected,
// ranked by distance from the agent's current position, plus the agent's own
// out-for-delivery orders regardless of radius.
type GetNearbyOrdersQuery struct {
	userID       kernel.UUID
	radiusMeters float64
	includeAll   bool

	guard guard.ConstructorGuard
}

// NewGetNearbyOrdersQuery creates a query for orders around the agent owned
// by the given user. When includeAll is set the store skips its radius
// cutoff; every candidate is still distance-annotated and classified against
// radiusMeters.
func NewGetNearbyOrdersQuery(
	userID kernel.UUID,
	radiusMeters float64,
	includeAll bool,
) (GetNearbyOrdersQuery, error) {
	if err := userID.Validate(); err != nil {
		return GetNearbyOrdersQuery{}, err
	}

	if !(radiusMeters > 0) {
		return GetNearbyOrdersQuery{}, errs.NewValueIsInvalidError("radiusMeters")
	}

	return GetNearbyOrdersQuery{
		userID:       userID,
		radiusMeters: radiusMeters,
		includeAll:   includeAll,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetNearbyOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetNearbyOrdersQueryIsNotConstructed)
}

// UserID returns the requesting agent's user account id.
func (q GetNearbyOrdersQuery) UserID() kernel.UUID {
	return q.userID
}

// RadiusMeters returns the search radius in metres.
func (q GetNearbyOrdersQuery) RadiusMeters() float64 {
	return q.radiusMeters
}

// IncludeAll reports whether the store-level radius cutoff is skipped.
func (q GetNearbyOrdersQuery) IncludeAll() bool {
	return q.includeAll
}

// NearbyOrderResponse is one distance-annotated order in the listing.
// DistanceMeters carries the unknown sentinel and Distance is empty when the
// order's pickup location could not be resolved.
type NearbyOrderResponse struct {
	ID             kernel.UUID
	Status         order.Status
	PickupLocation *kernel.GeoPoint
	DistanceMeters float64
	Distance       string
	WithinRange    bool
}

// GetNearbyOrdersQueryResponse carries the two result sets of the listing.
// Available holds acceptable candidates ranked by ascending distance; Active
// holds the agent's own out-for-delivery orders, distance-annotated but never
// filtered, in store order.
type GetNearbyOrdersQueryResponse struct {
	Available []NearbyOrderResponse
	Active    []NearbyOrderResponse
}
