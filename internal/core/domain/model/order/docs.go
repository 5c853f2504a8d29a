// Package order provides domain entities and business logic for delivery-order
// lifecycle management in the dispatch system. It implements the Order
// aggregate root with exclusive agent assignment and an append-only status
// ledger.
//
// The package includes:
//   - Order: The aggregate root that manages order identity, assignment, and lifecycle
//   - Status: A state machine that enforces valid order status transitions
//   - HistoryEntry: One immutable record in the order's status ledger
//
// Key business rules:
//   - Dispatch operates on Confirmed orders: Confirmed -> OutForDelivery -> Delivered,
//     or Confirmed -> Cancelled; Delivered and Cancelled are terminal
//   - An order carries an assigned agent iff it is OutForDelivery or Delivered,
//     and the assignment is set exactly once
//   - Every transition appends exactly one ledger entry; the ledger never
//     loses or reorders entries
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
