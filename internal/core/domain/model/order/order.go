package order

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// EstimatedDeliveryWindow is how far ahead of the assignment moment the
// estimated delivery time is set.
const EstimatedDeliveryWindow = 30 * time.Minute

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through the NewOrder or RestoreOrder factory methods.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")
	// ErrOrderAlreadyAssigned is returned when an assignment attempt finds the
	// order already held by an agent. Callers treat it as a normal race outcome
	// and re-query candidates.
	ErrOrderAlreadyAssigned = errs.NewConflictError("order is already assigned")
)

// Order is the aggregate root for a delivery order. It owns the lifecycle
// state machine, the exclusive agent assignment, and the append-only status
// ledger.
//
// Order maintains these invariants:
//   - assignedAgentID is non-nil iff status is OutForDelivery or Delivered
//   - the status ledger never loses or reorders entries; every transition
//     appends exactly one entry
//   - terminal orders (Delivered, Cancelled) accept no further mutation
//   - instances exist only via NewOrder or RestoreOrder
//
// The pickup location is nullable: orders ingested with missing or malformed
// coordinates are still dispatchable data (they rank last in candidate
// listings) and must not break reads.
type Order struct {
	id         kernel.UUID
	customerID kernel.UUID

	// assignedAgentID is set exactly once, by the winning Assign call.
	assignedAgentID *kernel.UUID

	pickupLocation *kernel.GeoPoint
	status         Status

	// history is the append-only status ledger, ascending by timestamp.
	history []HistoryEntry

	estimatedDeliveryTime *time.Time
	actualDeliveryTime    *time.Time

	isConstructed bool
}

// NewOrder creates a Confirmed order ready for dispatch, with the
// confirmation recorded as the first ledger entry. It is the entry point for
// checkout-completed orders handed over by the ordering system.
//
// Parameters:
//   - id: unique order identifier
//   - customerID: owning user, referenced by id only
//   - pickupLocation: restaurant position; must be valid here (orders with
//     broken coordinates only enter the system through RestoreOrder)
func NewOrder(id kernel.UUID, customerID kernel.UUID, pickupLocation kernel.GeoPoint) (*Order, error) {
	o := &Order{
		status:        Confirmed,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		pickupLocation.Validate(),
	); err != nil {
		return nil, err
	}

	o.pickupLocation = &pickupLocation
	o.appendHistory(Confirmed, nil, "order confirmed")
	return o, nil
}

// RestoreOrder reconstructs an Order aggregate from persistent storage. It
// accepts shapes NewOrder never produces (a nil pickup location from a
// malformed document, a rehydrated assignment, a populated ledger) and
// validates cross-field consistency before handing the aggregate back.
func RestoreOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	assignedAgentID *kernel.UUID,
	pickupLocation *kernel.GeoPoint,
	status Status,
	history []HistoryEntry,
	estimatedDeliveryTime *time.Time,
	actualDeliveryTime *time.Time,
) (*Order, error) {
	o := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setStatus(status),
		o.setAssignedAgent(assignedAgentID),
		o.setPickupLocation(pickupLocation),
		o.setHistory(history),
	); err != nil {
		return nil, err
	}

	o.estimatedDeliveryTime = cloneTime(estimatedDeliveryTime)
	o.actualDeliveryTime = cloneTime(actualDeliveryTime)
	return o, nil
}

// Validate ensures the Order was properly constructed through a factory
// method, preventing use of directly instantiated structs.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the id of the user who placed the order.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// PickupLocation returns the restaurant position, or nil when the order was
// stored without resolvable coordinates.
func (o *Order) PickupLocation() *kernel.GeoPoint {
	return o.pickupLocation
}

// AssignedAgent returns the id of the agent holding the assignment, or nil
// while the order is unassigned.
func (o *Order) AssignedAgent() *kernel.UUID {
	return o.assignedAgentID
}

// History returns the status ledger in append order. The returned slice is a
// copy; the ledger itself cannot be modified from outside.
func (o *Order) History() []HistoryEntry {
	out := make([]HistoryEntry, len(o.history))
	copy(out, o.history)
	return out
}

// LastHistoryEntry returns the most recent ledger entry and true, or a zero
// entry and false for an empty ledger.
func (o *Order) LastHistoryEntry() (HistoryEntry, bool) {
	if len(o.history) == 0 {
		return HistoryEntry{}, false
	}
	return o.history[len(o.history)-1], true
}

// EstimatedDeliveryTime returns the ETA set at assignment, nil before it.
func (o *Order) EstimatedDeliveryTime() *time.Time {
	return cloneTime(o.estimatedDeliveryTime)
}

// ActualDeliveryTime returns the completion time, nil until delivered.
func (o *Order) ActualDeliveryTime() *time.Time {
	return cloneTime(o.actualDeliveryTime)
}

// IsTerminal reports whether the order reached Delivered or Cancelled.
func (o *Order) IsTerminal() bool {
	return o.status.IsTerminal()
}

// Assign gives the agent the exclusive assignment and moves the order to
// OutForDelivery, setting the estimated delivery time and appending a ledger
// entry. The aggregate-level checks are the first line of defense; the
// authoritative exclusivity is the store's check-and-set on the unassigned
// predicate, so a racing Assign that passes here can still lose at the store.
//
// Failure modes:
//   - order already assigned: ErrOrderAlreadyAssigned (conflict)
//   - order not Confirmed (including terminal states): precondition failure
//   - invalid agent id: validation failure
//
// agentLocation optionally records where the agent was at acceptance; it goes
// into the ledger entry only.
func (o *Order) Assign(agentID kernel.UUID, agentLocation *kernel.GeoPoint) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	if o.assignedAgentID != nil {
		return ErrOrderAlreadyAssigned
	}

	newStatus, err := o.status.Assign()
	if err != nil {
		return err
	}

	eta := time.Now().UTC().Add(EstimatedDeliveryWindow)

	o.status = newStatus
	o.assignedAgentID = &agentID
	o.estimatedDeliveryTime = &eta
	o.appendHistory(newStatus, agentLocation, "order accepted for delivery")
	return nil
}

// Complete marks the order Delivered, records the actual delivery time, and
// appends a ledger entry. Only the agent holding the assignment may complete;
// anyone else gets a forbidden error. Wrong-state attempts (not yet assigned,
// already terminal) fail as precondition violations.
func (o *Order) Complete(byAgentID kernel.UUID, agentLocation *kernel.GeoPoint) error {
	if err := byAgentID.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.Complete()
	if err != nil {
		return err
	}

	if o.assignedAgentID == nil || !o.assignedAgentID.IsEqual(byAgentID) {
		return errs.NewForbiddenError("only the assigned agent can complete the order")
	}

	deliveredAt := time.Now().UTC()

	o.status = newStatus
	o.actualDeliveryTime = &deliveredAt
	o.appendHistory(newStatus, agentLocation, "order delivered")
	return nil
}

// Cancel withdraws a still-unassigned Confirmed order and appends a ledger
// entry carrying the supplied note. Assigned and terminal orders cannot be
// cancelled through dispatch.
func (o *Order) Cancel(note string) error {
	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}

	if note == "" {
		note = "order cancelled"
	}

	o.status = newStatus
	o.appendHistory(newStatus, nil, note)
	return nil
}

// appendHistory appends one immutable ledger entry stamped with the current
// UTC time. Timestamps are taken in call order, keeping the ledger ascending.
func (o *Order) appendHistory(status Status, location *kernel.GeoPoint, note string) {
	o.history = append(o.history, HistoryEntry{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Location:  location,
		Note:      note,
	})
}

// setID validates and sets the order's unique identifier.
func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

// setCustomerID validates and sets the owning user reference.
func (o *Order) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("customerID", err)
	}
	o.customerID = customerID
	return nil
}

// setStatus validates and sets the lifecycle status during restoration.
func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

// setAssignedAgent validates the agent reference against the status
// invariant during restoration. Must run after setStatus.
func (o *Order) setAssignedAgent(agentID *kernel.UUID) error {
	if err := o.status.ValidateCanHaveAgent(agentID != nil); err != nil {
		return err
	}
	if agentID != nil {
		if err := agentID.Validate(); err != nil {
			return err
		}
		id := *agentID
		o.assignedAgentID = &id
	}
	return nil
}

// setPickupLocation accepts nil (unresolvable coordinates) or a valid point.
func (o *Order) setPickupLocation(location *kernel.GeoPoint) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	point := *location
	o.pickupLocation = &point
	return nil
}

// setHistory validates and installs the restored ledger: every entry valid,
// timestamps ascending. An empty ledger is legal for legacy documents.
func (o *Order) setHistory(history []HistoryEntry) error {
	for i, entry := range history {
		if err := entry.Validate(); err != nil {
			return err
		}
		if i > 0 && entry.Timestamp.Before(history[i-1].Timestamp) {
			return errs.NewValueIsInvalidError("status history is not sorted by timestamp")
		}
	}

	o.history = make([]HistoryEntry, len(history))
	copy(o.history, history)
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
