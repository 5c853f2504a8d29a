package queries

import (
	"context"

	"dispatch/internal/core/ports"
)

// GetAgentProfileQueryHandler resolves the profile for the requesting user.
type GetAgentProfileQueryHandler struct {
	agentStore ports.AgentStore
}

// NewGetAgentProfileQueryHandler creates a handler for profile queries.
func NewGetAgentProfileQueryHandler(agentStore ports.AgentStore) GetAgentProfileQueryHandler {
	return GetAgentProfileQueryHandler{agentStore: agentStore}
}

// Handle returns the profile read model, or not-found when the user has
// never registered as an agent.
func (h GetAgentProfileQueryHandler) Handle(
	ctx context.Context,
	query GetAgentProfileQuery,
) (GetAgentProfileQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetAgentProfileQueryResponse{}, err
	}

	deliveryAgent, err := h.agentStore.GetByUserID(ctx, query.UserID())
	if err != nil {
		return GetAgentProfileQueryResponse{}, err
	}

	return GetAgentProfileQueryResponse{
		ID:                  deliveryAgent.ID(),
		UserID:              deliveryAgent.UserID(),
		VehicleType:         deliveryAgent.VehicleType(),
		VehicleNumber:       deliveryAgent.VehicleNumber(),
		IsAvailable:         deliveryAgent.IsAvailable(),
		IsVerified:          deliveryAgent.IsVerified(),
		CurrentLocation:     deliveryAgent.CurrentLocation(),
		ActiveOrders:        deliveryAgent.ActiveOrders(),
		Rating:              deliveryAgent.Rating(),
		TotalRatings:        deliveryAgent.TotalRatings(),
		CompletedDeliveries: len(deliveryAgent.DeliveryHistory()),
	}, nil
}
