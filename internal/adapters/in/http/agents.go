package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// registerAgentRequest enrols a user account as a delivery agent.
type registerAgentRequest struct {
	UserID        string `json:"userId"`
	VehicleType   string `json:"vehicleType"`
	VehicleNumber string `json:"vehicleNumber"`
}

type registerAgentResponse struct {
	AgentID string `json:"agentId"`
}

type availabilityRequest struct {
	UserID    string `json:"userId"`
	Available bool   `json:"available"`
}

type locationUpdateRequest struct {
	UserID    string  `json:"userId"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type verificationRequest struct {
	Verified bool `json:"verified"`
}

// agentProfileView is the wire form of an agent's registry record.
type agentProfileView struct {
	AgentID             string           `json:"agentId"`
	UserID              string           `json:"userId"`
	VehicleType         string           `json:"vehicleType"`
	VehicleNumber       string           `json:"vehicleNumber"`
	IsAvailable         bool             `json:"isAvailable"`
	IsVerified          bool             `json:"isVerified"`
	CurrentLocation     *positionPayload `json:"currentLocation,omitempty"`
	ActiveOrders        []string         `json:"activeOrders"`
	Rating              float64          `json:"rating"`
	TotalRatings        int              `json:"totalRatings"`
	CompletedDeliveries int              `json:"completedDeliveries"`
}

// RegisterAgent handles POST /api/v1/agents - enrols a user as a delivery
// agent and returns the minted agent id.
func (s *Server) RegisterAgent(ctx echo.Context) error {
	var request registerAgentRequest
	if err := ctx.Bind(&request); err != nil {
		return bindError(ctx)
	}

	userID, err := parseUUID(request.UserID, "userId")
	if err != nil {
		return s.writeError(ctx, err)
	}

	agentID := kernel.NewUUID()
	cmd, err := commands.NewRegisterAgentCommand(
		agentID,
		userID,
		request.VehicleType,
		request.VehicleNumber,
	)
	if err != nil {
		return s.writeError(ctx, err)
	}

	if err := s.registerAgentHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, registerAgentResponse{AgentID: agentID.String()})
}

// GetAgentProfile handles GET /api/v1/agents/profile - returns the registry
// record for the agent behind the given user account.
func (s *Server) GetAgentProfile(ctx echo.Context) error {
	userID, err := parseUUID(ctx.QueryParam("userId"), "userId")
	if err != nil {
		return s.writeError(ctx, err)
	}

	query, err := queries.NewGetAgentProfileQuery(userID)
	if err != nil {
		return s.writeError(ctx, err)
	}

	profile, err := s.getAgentProfileHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, newAgentProfileView(profile))
}

// SetAvailability handles PUT /api/v1/agents/availability - toggles whether
// the agent is offered new orders.
func (s *Server) SetAvailability(ctx echo.Context) error {
	var request availabilityRequest
	if err := ctx.Bind(&request); err != nil {
		return bindError(ctx)
	}

	userID, err := parseUUID(request.UserID, "userId")
	if err != nil {
		return s.writeError(ctx, err)
	}

	cmd, err := commands.NewSetAvailabilityCommand(userID, request.Available)
	if err != nil {
		return s.writeError(ctx, err)
	}

	if err := s.setAvailabilityHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// UpdateLocation handles PUT /api/v1/agents/location - records the agent's
// position and fans it out to location subscribers.
func (s *Server) UpdateLocation(ctx echo.Context) error {
	var request locationUpdateRequest
	if err := ctx.Bind(&request); err != nil {
		return bindError(ctx)
	}

	userID, err := parseUUID(request.UserID, "userId")
	if err != nil {
		return s.writeError(ctx, err)
	}

	cmd, err := commands.NewUpdateLocationCommand(userID, request.Longitude, request.Latitude)
	if err != nil {
		return s.writeError(ctx, err)
	}

	if err := s.updateLocationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// VerifyAgent handles PUT /api/v1/agents/:agentID/verification - grants or
// revokes an agent's clearance to carry orders. Unverified agents can browse
// the listing but cannot accept.
func (s *Server) VerifyAgent(ctx echo.Context) error {
	agentID, err := parseUUID(ctx.Param("agentID"), "agentID")
	if err != nil {
		return s.writeError(ctx, err)
	}

	var request verificationRequest
	if err := ctx.Bind(&request); err != nil {
		return bindError(ctx)
	}

	cmd, err := commands.NewVerifyAgentCommand(agentID, request.Verified)
	if err != nil {
		return s.writeError(ctx, err)
	}

	if err := s.verifyAgentHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func newAgentProfileView(response queries.GetAgentProfileQueryResponse) agentProfileView {
	view := agentProfileView{
		AgentID:             response.ID.String(),
		UserID:              response.UserID.String(),
		VehicleType:         response.VehicleType,
		VehicleNumber:       response.VehicleNumber,
		IsAvailable:         response.IsAvailable,
		IsVerified:          response.IsVerified,
		CurrentLocation:     newPositionPayload(response.CurrentLocation),
		ActiveOrders:        make([]string, 0, len(response.ActiveOrders)),
		Rating:              response.Rating,
		TotalRatings:        response.TotalRatings,
		CompletedDeliveries: response.CompletedDeliveries,
	}

	for _, orderID := range response.ActiveOrders {
		view.ActiveOrders = append(view.ActiveOrders, orderID.String())
	}

	return view
}
