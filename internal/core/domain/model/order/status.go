package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery order.
// It implements a state machine with defined transitions so orders follow the
// dispatch workflow and never mutate past a terminal state.
//
// State transitions:
//
//	Confirmed ──┬──> OutForDelivery ──> Delivered
//	            │
//	            └──> Cancelled
//
// Created is the pre-checkout state written by the ordering system; the
// dispatch engine only ever transitions orders out of Confirmed. Delivered
// and Cancelled are terminal.
//
// The string form of a Status is its persisted snake_case name, shared by
// storage, events, and the HTTP surface.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Created is written on checkout start by the ordering system.
	// Orders in this state are not yet visible to dispatch.
	Created

	// Confirmed is the initial state for dispatch: checkout completed,
	// payment settled, no agent assigned yet.
	Confirmed

	// OutForDelivery indicates an agent accepted the order and holds the
	// exclusive assignment.
	OutForDelivery

	// Delivered indicates the assigned agent completed the delivery.
	// Terminal.
	Delivered

	// Cancelled indicates the order was withdrawn before assignment.
	// Terminal.
	Cancelled
)

// getStatusNames returns the persisted snake_case name for every Status
// value, including Unknown.
func getStatusNames() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		Created:        "created",
		Confirmed:      "confirmed",
		OutForDelivery: "out_for_delivery",
		Delivered:      "delivered",
		Cancelled:      "cancelled",
	}
}

// getValidStatusNames returns only the statuses a stored order may carry.
func getValidStatusNames() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Created:        "created",
		Confirmed:      "confirmed",
		OutForDelivery: "out_for_delivery",
		Delivered:      "delivered",
		Cancelled:      "cancelled",
	}
}

// StatusFromString maps a persisted snake_case name back to its Status.
// It is used when rehydrating orders from storage or parsing change events.
func StatusFromString(name string) (Status, error) {
	for status, statusName := range getValidStatusNames() {
		if statusName == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status is invalid",
		fmt.Errorf("%q is not a known status", name),
	)
}

// Validate checks that the Status is one of the persistable values.
// Unknown (0) and any out-of-range value fail.
func (s Status) Validate() error {
	if _, ok := getValidStatusNames()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%d is not a valid status", s),
		)
	}
	return nil
}

// String returns the persisted snake_case name of the status.
// It implements fmt.Stringer and is safe on any value, including invalid
// ones, which render as "unknown".
func (s Status) String() string {
	if name, ok := getStatusNames()[s]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// ValidateCanHaveAgent validates the consistency between order status and
// agent assignment: an order has an assigned agent if and only if it is
// OutForDelivery or Delivered.
//
// Parameters:
//   - hasAgent: whether the order carries an assigned agent reference
//
// Returns:
//   - error: validation error if status and assignment are inconsistent
func (s Status) ValidateCanHaveAgent(hasAgent bool) error {
	if hasAgent && s != OutForDelivery && s != Delivered {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have an assigned agent", s),
		)
	}

	if !hasAgent && (s == OutForDelivery || s == Delivered) {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no assigned agent", s),
		)
	}

	return nil
}

// Assign transitions the status to OutForDelivery.
//
// Valid transitions:
//   - Confirmed -> OutForDelivery
//
// Any other source state fails with a precondition error; terminal states
// and pre-checkout states are never assignable.
func (s Status) Assign() (Status, error) {
	if s != Confirmed {
		return Unknown, errs.NewPreconditionFailedError(
			fmt.Sprintf("%s is not a valid status to assign", s))
	}

	return OutForDelivery, nil
}

// Complete transitions the status to Delivered.
//
// Valid transitions:
//   - OutForDelivery -> Delivered
func (s Status) Complete() (Status, error) {
	if s != OutForDelivery {
		return Unknown, errs.NewPreconditionFailedError(
			fmt.Sprintf("%s is not a valid status to complete", s))
	}

	return Delivered, nil
}

// Cancel transitions the status to Cancelled.
//
// Valid transitions:
//   - Confirmed -> Cancelled (pre-assignment only; an out-for-delivery order
//     cannot be cancelled through dispatch)
func (s Status) Cancel() (Status, error) {
	if s != Confirmed {
		return Unknown, errs.NewPreconditionFailedError(
			fmt.Sprintf("%s is not a valid status to cancel", s))
	}

	return Cancelled, nil
}
