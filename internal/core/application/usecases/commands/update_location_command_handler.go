package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// AgentLocationNotice is the payload broadcast to an order's topic when the
// carrying agent reports a new position.
type AgentLocationNotice struct {
	Type      string  `json:"type"`
	AgentID   string  `json:"agentId"`
	OrderID   string  `json:"orderId"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// UpdateLocationCommandHandler persists an agent's reported position and
// pushes it to the order rooms of the agent's active deliveries so tracking
// customers see the courier move.
//
// The push is fire-and-forget: it happens after the write, is not
// transactional with it, and a failed publish only logs. The position write
// itself is the operation's success criterion.
type UpdateLocationCommandHandler struct {
	agentStore  ports.AgentStore
	broadcaster ports.Broadcaster
	logger      *slog.Logger
}

// NewUpdateLocationCommandHandler creates a handler for position reports.
func NewUpdateLocationCommandHandler(
	agentStore ports.AgentStore,
	broadcaster ports.Broadcaster,
	logger *slog.Logger,
) UpdateLocationCommandHandler {
	return UpdateLocationCommandHandler{
		agentStore:  agentStore,
		broadcaster: broadcaster,
		logger:      logger.With("component", "update_location_handler"),
	}
}

// Handle writes the position and broadcasts it to the topics of the agent's
// active orders.
func (h UpdateLocationCommandHandler) Handle(ctx context.Context, cmd UpdateLocationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	deliveryAgent, err := h.agentStore.GetByUserID(ctx, cmd.UserID())
	if err != nil {
		return err
	}

	if err = h.agentStore.SetLocation(ctx, deliveryAgent.ID(), cmd.Location()); err != nil {
		return err
	}

	h.broadcastPosition(ctx, deliveryAgent.ID(), deliveryAgent.ActiveOrders(), cmd.Location())
	return nil
}

func (h UpdateLocationCommandHandler) broadcastPosition(
	ctx context.Context,
	agentID kernel.UUID,
	activeOrders []kernel.UUID,
	location kernel.GeoPoint,
) {
	for _, orderID := range activeOrders {
		notice := AgentLocationNotice{
			Type:      "agent_location",
			AgentID:   agentID.String(),
			OrderID:   orderID.String(),
			Longitude: location.Longitude(),
			Latitude:  location.Latitude(),
		}

		if err := h.broadcaster.Publish("order:"+orderID.String(), notice); err != nil {
			h.logger.ErrorContext(ctx, "Agent location broadcast failed",
				"order_id", orderID.String(), "error", err)
		}
	}
}
