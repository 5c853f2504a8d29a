package agent

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// MinRating and MaxRating bound a single customer rating.
	MinRating float64 = 1
	MaxRating float64 = 5
)

// Domain errors for delivery-agent operations.
var (
	// ErrVehicleTypeIsRequired is returned when registering an agent without a vehicle type.
	ErrVehicleTypeIsRequired = errs.NewValueIsRequiredError("vehicleType")
	// ErrVehicleNumberIsRequired is returned when registering an agent without a vehicle number.
	ErrVehicleNumberIsRequired = errs.NewValueIsRequiredError("vehicleNumber")
	// ErrAgentIsNotConstructed is returned when using an improperly initialized DeliveryAgent.
	ErrAgentIsNotConstructed = errors.New("DeliveryAgent must be created via NewDeliveryAgent or RestoreDeliveryAgent constructor")
	// ErrAgentNotVerified is the precondition failure for order operations by an unverified agent.
	ErrAgentNotVerified = errs.NewPreconditionFailedError("agent is not verified")
	// ErrAgentNotAvailable is the precondition failure for order operations by an unavailable agent.
	ErrAgentNotAvailable = errs.NewPreconditionFailedError("agent is not available")
	// ErrOrderIsNotActive is returned when completing an order the agent is not carrying.
	ErrOrderIsNotActive = errors.New("order is not in the agent's active set")
)

// DeliveryAgent is the aggregate root for a courier profile. It tracks the
// two eligibility gates (availability, verification), the agent's live
// position, and three order-reference collections:
//
//   - activeOrders: orders currently out for delivery with this agent
//     (set semantics, unbounded in this design)
//   - rejectedOrders: orders the agent declined; append-only, never expired,
//     used to keep rejected orders out of the agent's candidate listings
//   - deliveryHistory: completed orders in completion order, append-only
//
// Agents are never deleted; deactivation is isAvailable=false. The profile
// belongs to exactly one user account, referenced by id only.
type DeliveryAgent struct {
	id     kernel.UUID
	userID kernel.UUID

	vehicleType   string
	vehicleNumber string

	// isAvailable and isVerified gate order acceptance independently;
	// both must hold for the agent to take or reject orders.
	isAvailable bool
	isVerified  bool

	// currentLocation is the last reported position; nil until the first
	// location update. No positional history is retained.
	currentLocation *kernel.GeoPoint

	activeOrders    []kernel.UUID
	rejectedOrders  []kernel.UUID
	deliveryHistory []kernel.UUID

	rating       float64
	totalRatings int

	guard guard.ConstructorGuard
}

// NewDeliveryAgent registers a fresh agent profile for a user. New agents
// start unavailable and unverified: availability is the agent's own switch,
// verification is granted administratively. Ratings start at zero.
//
// Uniqueness of userID across agents is a registry concern enforced at the
// store; the aggregate only validates its own fields.
func NewDeliveryAgent(id kernel.UUID, userID kernel.UUID, vehicleType string, vehicleNumber string) (*DeliveryAgent, error) {
	a := &DeliveryAgent{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setID(id),
		a.setUserID(userID),
		a.setVehicleType(vehicleType),
		a.setVehicleNumber(vehicleNumber),
	); err != nil {
		return nil, err
	}

	return a, nil
}

// RestoreDeliveryAgent reconstructs an agent aggregate from persistent
// storage, including gates, position, order sets, and rating state.
func RestoreDeliveryAgent(
	id kernel.UUID,
	userID kernel.UUID,
	vehicleType string,
	vehicleNumber string,
	isAvailable bool,
	isVerified bool,
	currentLocation *kernel.GeoPoint,
	activeOrders []kernel.UUID,
	rejectedOrders []kernel.UUID,
	deliveryHistory []kernel.UUID,
	rating float64,
	totalRatings int,
) (*DeliveryAgent, error) {
	a := &DeliveryAgent{
		isAvailable: isAvailable,
		isVerified:  isVerified,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setID(id),
		a.setUserID(userID),
		a.setVehicleType(vehicleType),
		a.setVehicleNumber(vehicleNumber),
		a.setCurrentLocation(currentLocation),
		a.setOrderSets(activeOrders, rejectedOrders, deliveryHistory),
		a.setRating(rating, totalRatings),
	); err != nil {
		return nil, err
	}

	return a, nil
}

// Validate checks the agent was created through a constructor.
func (a *DeliveryAgent) Validate() error {
	if a == nil {
		return ErrAgentIsNotConstructed
	}
	return a.guard.Validate(ErrAgentIsNotConstructed)
}

// IsEqual compares two agents by their unique identifiers.
func (a *DeliveryAgent) IsEqual(other *DeliveryAgent) bool {
	if other == nil {
		return false
	}
	return a.id.IsEqual(other.id)
}

// ID returns the agent's unique identifier.
func (a *DeliveryAgent) ID() kernel.UUID {
	return a.id
}

// UserID returns the owning user account reference.
func (a *DeliveryAgent) UserID() kernel.UUID {
	return a.userID
}

// VehicleType returns the registered vehicle type.
func (a *DeliveryAgent) VehicleType() string {
	return a.vehicleType
}

// VehicleNumber returns the registered vehicle plate number.
func (a *DeliveryAgent) VehicleNumber() string {
	return a.vehicleNumber
}

// IsAvailable reports the agent's own online/offline switch.
func (a *DeliveryAgent) IsAvailable() bool {
	return a.isAvailable
}

// IsVerified reports the administrative verification gate.
func (a *DeliveryAgent) IsVerified() bool {
	return a.isVerified
}

// CurrentLocation returns the last reported position, nil if the agent has
// never reported one.
func (a *DeliveryAgent) CurrentLocation() *kernel.GeoPoint {
	return a.currentLocation
}

// ActiveOrders returns a copy of the orders currently held by the agent.
func (a *DeliveryAgent) ActiveOrders() []kernel.UUID {
	return cloneUUIDs(a.activeOrders)
}

// RejectedOrders returns a copy of the orders the agent declined.
func (a *DeliveryAgent) RejectedOrders() []kernel.UUID {
	return cloneUUIDs(a.rejectedOrders)
}

// DeliveryHistory returns a copy of the completed orders in completion order.
func (a *DeliveryAgent) DeliveryHistory() []kernel.UUID {
	return cloneUUIDs(a.deliveryHistory)
}

// Rating returns the running average customer rating, 0 before any rating.
func (a *DeliveryAgent) Rating() float64 {
	return a.rating
}

// TotalRatings returns how many ratings the average is built from.
func (a *DeliveryAgent) TotalRatings() int {
	return a.totalRatings
}

// SetAvailability flips the agent's own online/offline switch.
func (a *DeliveryAgent) SetAvailability(available bool) {
	a.isAvailable = available
}

// SetVerification sets the administrative verification gate. There is no
// guard on this transition: verification decisions live outside the domain.
func (a *DeliveryAgent) SetVerification(verified bool) {
	a.isVerified = verified
}

// SetLocation updates the agent's live position.
func (a *DeliveryAgent) SetLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	a.currentLocation = &location
	return nil
}

// CanAcceptOrder reports whether both eligibility gates hold.
func (a *DeliveryAgent) CanAcceptOrder() bool {
	return a.isVerified && a.isAvailable
}

// ValidateCanAcceptOrder returns the precise precondition failure for an
// ineligible agent: ErrAgentNotVerified, then ErrAgentNotAvailable.
func (a *DeliveryAgent) ValidateCanAcceptOrder() error {
	if !a.isVerified {
		return ErrAgentNotVerified
	}
	if !a.isAvailable {
		return ErrAgentNotAvailable
	}
	return nil
}

// AddActiveOrder records that the agent now carries the order. The active
// set has set semantics, so re-adding a held order is a no-op.
func (a *DeliveryAgent) AddActiveOrder(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	if containsUUID(a.activeOrders, orderID) {
		return nil
	}

	a.activeOrders = append(a.activeOrders, orderID)
	return nil
}

// HasActiveOrder reports whether the agent currently carries the order.
func (a *DeliveryAgent) HasActiveOrder(orderID kernel.UUID) bool {
	return containsUUID(a.activeOrders, orderID)
}

// RejectOrder adds the order to the agent's rejection memory. Rejection is
// idempotent: a duplicate reject leaves the set unchanged and is not an
// error. Rejected entries are never expired.
func (a *DeliveryAgent) RejectOrder(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	if containsUUID(a.rejectedOrders, orderID) {
		return nil
	}

	a.rejectedOrders = append(a.rejectedOrders, orderID)
	return nil
}

// HasRejectedOrder reports whether the agent previously declined the order.
func (a *DeliveryAgent) HasRejectedOrder(orderID kernel.UUID) bool {
	return containsUUID(a.rejectedOrders, orderID)
}

// CompleteOrder moves the order from the active set to the end of the
// delivery history. Completing an order the agent does not carry returns
// ErrOrderIsNotActive.
func (a *DeliveryAgent) CompleteOrder(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	if !containsUUID(a.activeOrders, orderID) {
		return ErrOrderIsNotActive
	}

	remaining := make([]kernel.UUID, 0, len(a.activeOrders)-1)
	for _, id := range a.activeOrders {
		if !id.IsEqual(orderID) {
			remaining = append(remaining, id)
		}
	}

	a.activeOrders = remaining
	a.deliveryHistory = append(a.deliveryHistory, orderID)
	return nil
}

// RecordRating folds one customer rating in [MinRating..MaxRating] into the
// running average.
func (a *DeliveryAgent) RecordRating(value float64) error {
	if value < MinRating || value > MaxRating {
		return errs.NewValueIsOutOfRangeError("rating", value, MinRating, MaxRating)
	}

	total := float64(a.totalRatings)
	a.rating = (a.rating*total + value) / (total + 1)
	a.totalRatings++
	return nil
}

// setID sets the agent's unique identifier with validation.
func (a *DeliveryAgent) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

// setUserID sets the owning user reference with validation.
func (a *DeliveryAgent) setUserID(userID kernel.UUID) error {
	if err := userID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("userID", err)
	}
	a.userID = userID
	return nil
}

// setVehicleType sets the vehicle type with validation.
func (a *DeliveryAgent) setVehicleType(vehicleType string) error {
	if vehicleType == "" {
		return ErrVehicleTypeIsRequired
	}
	a.vehicleType = vehicleType
	return nil
}

// setVehicleNumber sets the vehicle plate number with validation.
func (a *DeliveryAgent) setVehicleNumber(vehicleNumber string) error {
	if vehicleNumber == "" {
		return ErrVehicleNumberIsRequired
	}
	a.vehicleNumber = vehicleNumber
	return nil
}

// setCurrentLocation accepts nil (never reported) or a valid point.
func (a *DeliveryAgent) setCurrentLocation(location *kernel.GeoPoint) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	point := *location
	a.currentLocation = &point
	return nil
}

// setOrderSets installs the restored order collections. The active and
// rejected collections carry set semantics, so duplicates are a data defect.
func (a *DeliveryAgent) setOrderSets(active, rejected, history []kernel.UUID) error {
	if err := validateUUIDSet("activeOrders", active); err != nil {
		return err
	}
	if err := validateUUIDSet("rejectedOrders", rejected); err != nil {
		return err
	}
	for _, id := range history {
		if err := id.Validate(); err != nil {
			return err
		}
	}

	a.activeOrders = cloneUUIDs(active)
	a.rejectedOrders = cloneUUIDs(rejected)
	a.deliveryHistory = cloneUUIDs(history)
	return nil
}

// setRating installs the restored rating state with range validation.
func (a *DeliveryAgent) setRating(rating float64, totalRatings int) error {
	if rating < 0 || rating > MaxRating {
		return errs.NewValueIsOutOfRangeError("rating", rating, 0, MaxRating)
	}
	if totalRatings < 0 {
		return errs.NewValueIsInvalidError("totalRatings")
	}

	a.rating = rating
	a.totalRatings = totalRatings
	return nil
}

func containsUUID(ids []kernel.UUID, target kernel.UUID) bool {
	for _, id := range ids {
		if id.IsEqual(target) {
			return true
		}
	}
	return false
}

func cloneUUIDs(ids []kernel.UUID) []kernel.UUID {
	if ids == nil {
		return nil
	}
	out := make([]kernel.UUID, len(ids))
	copy(out, ids)
	return out
}

func validateUUIDSet(paramName string, ids []kernel.UUID) error {
	seen := make(map[kernel.UUID]struct{}, len(ids))
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return errs.NewValueIsInvalidError(paramName + " contains duplicates")
		}
		seen[id] = struct{}{}
	}
	return nil
}
