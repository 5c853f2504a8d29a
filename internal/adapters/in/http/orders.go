package http

import (
	"net/http"
	"strconv"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// createOrderRequest is the ingest payload for an order placed upstream.
// OrderID is optional: when the ordering system supplies its own id it is
// kept, so replayed requests surface as conflicts; otherwise a fresh id is
// minted here.
type createOrderRequest struct {
	OrderID    string          `json:"orderId"`
	CustomerID string          `json:"customerId"`
	Pickup     positionPayload `json:"pickup"`
}

type createOrderResponse struct {
	OrderID string `json:"orderId"`
}

// agentActionRequest identifies the agent account behind an order
// transition.
type agentActionRequest struct {
	UserID string `json:"userId"`
}

type cancelOrderRequest struct {
	Note string `json:"note"`
}

// CreateOrder handles POST /api/v1/orders - ingests a confirmed order into
// the dispatch pool.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var request createOrderRequest
	if err := ctx.Bind(&request); err != nil {
		return bindError(ctx)
	}

	orderID := kernel.NewUUID()
	if request.OrderID != "" {
		parsed, err := parseUUID(request.OrderID, "orderId")
		if err != nil {
			return s.writeError(ctx, err)
		}
		orderID = parsed
	}

	customerID, err := parseUUID(request.CustomerID, "customerId")
	if err != nil {
		return s.writeError(ctx, err)
	}

	cmd, err := commands.NewCreateOrderCommand(
		orderID,
		customerID,
		request.Pickup.Longitude,
		request.Pickup.Latitude,
	)
	if err != nil {
		return s.writeError(ctx, err)
	}

	if err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, createOrderResponse{OrderID: orderID.String()})
}

// AcceptOrder handles POST /api/v1/orders/:orderID/accept - claims an order
// for the requesting agent.
func (s *Server) AcceptOrder(ctx echo.Context) error {
	orderID, err := parseUUID(ctx.Param("orderID"), "orderID")
	if err != nil {
		return s.writeError(ctx, err)
	}

	var request agentActionRequest
	if err := ctx.Bind(&request); err != nil {
		return bindError(ctx)
	}

	userID, err := parseUUID(request.UserID, "userId")
	if err != nil {
		return s.writeError(ctx, err)
	}

	cmd, err := commands.NewAcceptOrderCommand(userID, orderID)
	if err != nil {
		return s.writeError(ctx, err)
	}

	if err := s.acceptOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RejectOrder handles POST /api/v1/orders/:orderID/reject - declines an
// unclaimed order so it stops appearing in this agent's listings. Other
// agents still see it.
func (s *Server) RejectOrder(ctx echo.Context) error {
	orderID, err := parseUUID(ctx.Param("orderID"), "orderID")
	if err != nil {
		return s.writeError(ctx, err)
	}

	var request agentActionRequest
	if err := ctx.Bind(&request); err != nil {
		return bindError(ctx)
	}

	userID, err := parseUUID(request.UserID, "userId")
	if err != nil {
		return s.writeError(ctx, err)
	}

	cmd, err := commands.NewRejectOrderCommand(userID, orderID)
	if err != nil {
		return s.writeError(ctx, err)
	}

	if err := s.rejectOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CompleteOrder handles POST /api/v1/orders/:orderID/complete - marks an
// order the agent holds as delivered.
func (s *Server) CompleteOrder(ctx echo.Context) error {
	orderID, err := parseUUID(ctx.Param("orderID"), "orderID")
	if err != nil {
		return s.writeError(ctx, err)
	}

	var request agentActionRequest
	if err := ctx.Bind(&request); err != nil {
		return bindError(ctx)
	}

	userID, err := parseUUID(request.UserID, "userId")
	if err != nil {
		return s.writeError(ctx, err)
	}

	cmd, err := commands.NewCompleteOrderCommand(userID, orderID)
	if err != nil {
		return s.writeError(ctx, err)
	}

	if err := s.completeOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CancelOrder handles POST /api/v1/orders/:orderID/cancel - cancels an order
// that has not been claimed. The note is optional.
func (s *Server) CancelOrder(ctx echo.Context) error {
	orderID, err := parseUUID(ctx.Param("orderID"), "orderID")
	if err != nil {
		return s.writeError(ctx, err)
	}

	var request cancelOrderRequest
	if err := ctx.Bind(&request); err != nil {
		return bindError(ctx)
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, request.Note)
	if err != nil {
		return s.writeError(ctx, err)
	}

	if err := s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// nearbyOrderView annotates one order with its distance from the requesting
// agent. DistanceMeters is -1 and the distance text empty when the distance
// could not be computed.
type nearbyOrderView struct {
	OrderID        string           `json:"orderId"`
	Status         string           `json:"status"`
	PickupLocation *positionPayload `json:"pickupLocation,omitempty"`
	DistanceMeters float64          `json:"distanceMeters"`
	Distance       string           `json:"distance,omitempty"`
	WithinRange    bool             `json:"withinRange"`
}

// nearbyOrdersView carries the two result sets of a listing: claimable
// candidates ranked by distance, and the agent's own active deliveries.
type nearbyOrdersView struct {
	Available []nearbyOrderView `json:"available"`
	Active    []nearbyOrderView `json:"active"`
}

// GetNearbyOrders handles GET /api/v1/orders/nearby - lists claimable orders
// around the requesting agent. radiusMeters falls back to the server default
// when absent; includeAll=true keeps candidates beyond the radius in the
// listing.
func (s *Server) GetNearbyOrders(ctx echo.Context) error {
	userID, err := parseUUID(ctx.QueryParam("userId"), "userId")
	if err != nil {
		return s.writeError(ctx, err)
	}

	radiusMeters := s.defaultRadiusMeters
	if raw := ctx.QueryParam("radiusMeters"); raw != "" {
		parsed, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil {
			return s.writeError(ctx, errs.NewValueIsInvalidErrorWithCause("radiusMeters", parseErr))
		}
		radiusMeters = parsed
	}

	includeAll := false
	if raw := ctx.QueryParam("includeAll"); raw != "" {
		parsed, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			return s.writeError(ctx, errs.NewValueIsInvalidErrorWithCause("includeAll", parseErr))
		}
		includeAll = parsed
	}

	query, err := queries.NewGetNearbyOrdersQuery(userID, radiusMeters, includeAll)
	if err != nil {
		return s.writeError(ctx, err)
	}

	listing, err := s.getNearbyOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, newNearbyOrdersView(listing))
}

func newNearbyOrdersView(response queries.GetNearbyOrdersQueryResponse) nearbyOrdersView {
	view := nearbyOrdersView{
		Available: make([]nearbyOrderView, 0, len(response.Available)),
		Active:    make([]nearbyOrderView, 0, len(response.Active)),
	}

	for _, candidate := range response.Available {
		view.Available = append(view.Available, newNearbyOrderView(candidate))
	}
	for _, candidate := range response.Active {
		view.Active = append(view.Active, newNearbyOrderView(candidate))
	}

	return view
}

func newNearbyOrderView(candidate queries.NearbyOrderResponse) nearbyOrderView {
	return nearbyOrderView{
		OrderID:        candidate.ID.String(),
		Status:         candidate.Status.String(),
		PickupLocation: newPositionPayload(candidate.PickupLocation),
		DistanceMeters: candidate.DistanceMeters,
		Distance:       candidate.Distance,
		WithinRange:    candidate.WithinRange,
	}
}

// orderTrackingView is the wire form of the customer-facing tracking
// timeline.
type orderTrackingView struct {
	OrderID               string              `json:"orderId"`
	CustomerID            string              `json:"customerId"`
	Status                string              `json:"status"`
	AgentID               *string             `json:"agentId,omitempty"`
	PickupLocation        *positionPayload    `json:"pickupLocation,omitempty"`
	EstimatedDeliveryTime *time.Time          `json:"estimatedDeliveryTime,omitempty"`
	ActualDeliveryTime    *time.Time          `json:"actualDeliveryTime,omitempty"`
	History               []trackingEventView `json:"history"`
}

type trackingEventView struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Location  *positionPayload `json:"location,omitempty"`
	Note      string           `json:"note,omitempty"`
}

// GetOrderTracking handles GET /api/v1/orders/:orderID/tracking - returns
// the order's current state and full status history.
func (s *Server) GetOrderTracking(ctx echo.Context) error {
	orderID, err := parseUUID(ctx.Param("orderID"), "orderID")
	if err != nil {
		return s.writeError(ctx, err)
	}

	query, err := queries.NewGetOrderTrackingQuery(orderID)
	if err != nil {
		return s.writeError(ctx, err)
	}

	tracking, err := s.getOrderTrackingHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, newOrderTrackingView(tracking))
}

func newOrderTrackingView(response queries.GetOrderTrackingQueryResponse) orderTrackingView {
	view := orderTrackingView{
		OrderID:               response.ID.String(),
		CustomerID:            response.CustomerID.String(),
		Status:                response.Status.String(),
		PickupLocation:        newPositionPayload(response.PickupLocation),
		EstimatedDeliveryTime: response.EstimatedDeliveryTime,
		ActualDeliveryTime:    response.ActualDeliveryTime,
		History:               make([]trackingEventView, 0, len(response.History)),
	}

	if response.AssignedAgent != nil {
		agentID := response.AssignedAgent.String()
		view.AgentID = &agentID
	}

	for _, event := range response.History {
		view.History = append(view.History, trackingEventView{
			Status:    event.Status.String(),
			Timestamp: event.Timestamp,
			Location:  newPositionPayload(event.Location),
			Note:      event.Note,
		})
	}

	return view
}
