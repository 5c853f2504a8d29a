// Package http exposes the dispatch engine over a JSON REST API.
//
// The server is a thin translation layer: request payloads are converted into
// commands and queries, outcomes into wire views, and application errors into
// the status-code contract described on writeError. No business rules live
// here.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler     commands.CreateOrderCommandHandler
	cancelOrderHandler     commands.CancelOrderCommandHandler
	acceptOrderHandler     commands.AcceptOrderCommandHandler
	rejectOrderHandler     commands.RejectOrderCommandHandler
	completeOrderHandler   commands.CompleteOrderCommandHandler
	registerAgentHandler   commands.RegisterAgentCommandHandler
	setAvailabilityHandler commands.SetAvailabilityCommandHandler
	updateLocationHandler  commands.UpdateLocationCommandHandler
	verifyAgentHandler     commands.VerifyAgentCommandHandler

	// Query handlers
	getNearbyOrdersHandler  queries.GetNearbyOrdersQueryHandler
	getOrderTrackingHandler queries.GetOrderTrackingQueryHandler
	getAgentProfileHandler  queries.GetAgentProfileQueryHandler

	// defaultRadiusMeters is applied to nearby-order listings that do not
	// name a radius of their own.
	defaultRadiusMeters float64

	logger *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query
// handlers. defaultRadiusMeters is the search radius used when a nearby-order
// listing omits one.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	acceptOrderHandler commands.AcceptOrderCommandHandler,
	rejectOrderHandler commands.RejectOrderCommandHandler,
	completeOrderHandler commands.CompleteOrderCommandHandler,
	registerAgentHandler commands.RegisterAgentCommandHandler,
	setAvailabilityHandler commands.SetAvailabilityCommandHandler,
	updateLocationHandler commands.UpdateLocationCommandHandler,
	verifyAgentHandler commands.VerifyAgentCommandHandler,
	getNearbyOrdersHandler queries.GetNearbyOrdersQueryHandler,
	getOrderTrackingHandler queries.GetOrderTrackingQueryHandler,
	getAgentProfileHandler queries.GetAgentProfileQueryHandler,
	defaultRadiusMeters float64,
	logger *slog.Logger,
) *Server {
	return &Server{
		createOrderHandler:      createOrderHandler,
		cancelOrderHandler:      cancelOrderHandler,
		acceptOrderHandler:      acceptOrderHandler,
		rejectOrderHandler:      rejectOrderHandler,
		completeOrderHandler:    completeOrderHandler,
		registerAgentHandler:    registerAgentHandler,
		setAvailabilityHandler:  setAvailabilityHandler,
		updateLocationHandler:   updateLocationHandler,
		verifyAgentHandler:      verifyAgentHandler,
		getNearbyOrdersHandler:  getNearbyOrdersHandler,
		getOrderTrackingHandler: getOrderTrackingHandler,
		getAgentProfileHandler:  getAgentProfileHandler,
		defaultRadiusMeters:     defaultRadiusMeters,
		logger:                  logger.With("component", "http"),
	}
}

// RegisterRoutes mounts every endpoint on the given echo instance. Business
// routes live under /api/v1; health and metrics sit at the root for probes
// and scrapers.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/nearby", s.GetNearbyOrders)
	api.GET("/orders/:orderID/tracking", s.GetOrderTracking)
	api.POST("/orders/:orderID/accept", s.AcceptOrder)
	api.POST("/orders/:orderID/reject", s.RejectOrder)
	api.POST("/orders/:orderID/complete", s.CompleteOrder)
	api.POST("/orders/:orderID/cancel", s.CancelOrder)

	api.POST("/agents", s.RegisterAgent)
	api.GET("/agents/profile", s.GetAgentProfile)
	api.PUT("/agents/availability", s.SetAvailability)
	api.PUT("/agents/location", s.UpdateLocation)
	api.PUT("/agents/:agentID/verification", s.VerifyAgent)

	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Health handles GET /health - reports process liveness.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ErrorResponse is the envelope every failed request returns.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeError translates application errors into HTTP status codes: invalid
// or missing values map to 400, forbidden to 403, missing objects to 404,
// conflicts to 409, and failed preconditions or out-of-range values to 422.
// Domain messages are client-safe and returned verbatim; anything
// unrecognized is an infrastructure fault, logged here with the body reduced
// to a generic 500 so store internals never reach callers.
func (s *Server) writeError(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrValueIsInvalid), errors.Is(err, errs.ErrValueIsRequired):
		code = http.StatusBadRequest
	case errors.Is(err, errs.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrPreconditionFailed), errors.Is(err, errs.ErrValueIsOutOfRange):
		code = http.StatusUnprocessableEntity
	default:
		s.logger.ErrorContext(ctx.Request().Context(), "Request failed",
			"method", ctx.Request().Method,
			"path", ctx.Path(),
			"error", err,
		)
		return ctx.JSON(code, ErrorResponse{Code: code, Message: "Internal server error"})
	}

	return ctx.JSON(code, ErrorResponse{Code: code, Message: err.Error()})
}

// bindError is the response for payloads that cannot be decoded at all.
func bindError(ctx echo.Context) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "Invalid request body",
	})
}

// parseUUID converts a path or payload identifier, attributing failures to
// the named parameter so they surface as client errors rather than opaque
// parse noise.
func parseUUID(value string, paramName string) (kernel.UUID, error) {
	if value == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredError(paramName)
	}

	id, err := kernel.UUIDFromString(value)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(paramName, err)
	}

	return id, nil
}

// positionPayload is the wire form of a longitude/latitude pair, shared by
// requests and views.
type positionPayload struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

func newPositionPayload(point *kernel.GeoPoint) *positionPayload {
	if point == nil {
		return nil
	}

	return &positionPayload{Longitude: point.Longitude(), Latitude: point.Latitude()}
}
