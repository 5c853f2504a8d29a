// Package agent provides domain entities and business logic for delivery-agent
// management in the dispatch system. It implements the DeliveryAgent aggregate
// root with eligibility gates, live position tracking, and per-agent order
// collections.
//
// The package includes:
//   - DeliveryAgent: The aggregate root that manages the agent's profile,
//     availability and verification gates, current location, active orders,
//     rejection memory, and delivery history
//
// Key business rules:
//   - Agents must have a valid unique identifier, user reference, vehicle type,
//     and vehicle number
//   - A freshly registered agent is unavailable and unverified; both gates must
//     be on before the agent may accept or reject orders
//   - Rejections are remembered permanently and are idempotent
//   - Completing an order moves it from the active set to the delivery history
//   - Customer ratings fold into a running average in the 1..5 range
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package agent
