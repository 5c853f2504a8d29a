package queries

import (
	"context"

	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// GetNearbyOrdersQueryHandler composes the delivery-opportunity listing from
// the stores and the geo matcher. The store applies the coarse radius filter
// (unless the query says include-all) and excludes the agent's rejected
// orders; the matcher computes exact distances, ranks, and classifies.
type GetNearbyOrdersQueryHandler struct {
	orderStore ports.OrderStore
	agentStore ports.AgentStore
	matcher    services.GeoMatcher
}

// NewGetNearbyOrdersQueryHandler creates a handler for nearby-order queries.
func NewGetNearbyOrdersQueryHandler(
	orderStore ports.OrderStore,
	agentStore ports.AgentStore,
	matcher services.GeoMatcher,
) GetNearbyOrdersQueryHandler {
	return GetNearbyOrdersQueryHandler{
		orderStore: orderStore,
		agentStore: agentStore,
		matcher:    matcher,
	}
}

// Handle builds the listing for the requesting user's agent. The agent must
// have reported a position at least once; without a reference point there is
// nothing to rank against.
func (h GetNearbyOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetNearbyOrdersQuery,
) (GetNearbyOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetNearbyOrdersQueryResponse{}, err
	}

	deliveryAgent, err := h.agentStore.GetByUserID(ctx, query.UserID())
	if err != nil {
		return GetNearbyOrdersQueryResponse{}, err
	}

	agentLocation := deliveryAgent.CurrentLocation()
	if agentLocation == nil {
		return GetNearbyOrdersQueryResponse{},
			errs.NewPreconditionFailedError("agent has not reported a location yet")
	}

	openOrders, err := h.orderStore.FindConfirmedUnassigned(
		ctx, *agentLocation, query.RadiusMeters(), deliveryAgent.RejectedOrders(), query.IncludeAll())
	if err != nil {
		return GetNearbyOrdersQueryResponse{}, err
	}

	activeOrders, err := h.orderStore.FindActiveByAgent(ctx, deliveryAgent.ID())
	if err != nil {
		return GetNearbyOrdersQueryResponse{}, err
	}

	return GetNearbyOrdersQueryResponse{
		Available: toNearbyOrderResponses(h.matcher.Rank(*agentLocation, openOrders, query.RadiusMeters())),
		Active:    toNearbyOrderResponses(h.matcher.Annotate(*agentLocation, activeOrders)),
	}, nil
}

func toNearbyOrderResponses(candidates []services.Candidate) []NearbyOrderResponse {
	responses := make([]NearbyOrderResponse, 0, len(candidates))
	for _, candidate := range candidates {
		responses = append(responses, NearbyOrderResponse{
			ID:             candidate.Order.ID(),
			Status:         candidate.Order.Status(),
			PickupLocation: candidate.Order.PickupLocation(),
			DistanceMeters: candidate.DistanceMeters,
			Distance:       candidate.DistanceText,
			WithinRange:    candidate.WithinRange,
		})
	}

	return responses
}
