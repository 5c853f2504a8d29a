// Package memstore provides in-memory implementations of the storage ports:
// the order store with check-and-set updates, the agent store with
// field-scoped atomic updates, and an ordered order-change feed with resume
// tokens. It backs unit and concurrency tests with real interleaving and
// serves as a dependency-free stand-in during local development.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// AgentStore is an in-memory ports.AgentStore. Every mutation runs under one
// lock over the stored aggregate, giving the same single-document atomicity
// the contract demands from a real document store.
type AgentStore struct {
	mu     sync.RWMutex
	agents map[kernel.UUID]*agent.DeliveryAgent
	byUser map[kernel.UUID]kernel.UUID
}

// NewAgentStore creates an empty in-memory agent store.
func NewAgentStore() *AgentStore {
	return &AgentStore{
		agents: make(map[kernel.UUID]*agent.DeliveryAgent),
		byUser: make(map[kernel.UUID]kernel.UUID),
	}
}

// Add persists a newly registered agent, enforcing one profile per user.
func (s *AgentStore) Add(ctx context.Context, aggregate *agent.DeliveryAgent) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agents[aggregate.ID()]; exists {
		return errs.NewConflictError(fmt.Sprintf("agent %s already exists", aggregate.ID()))
	}
	if _, exists := s.byUser[aggregate.UserID()]; exists {
		return errs.NewConflictError(
			fmt.Sprintf("agent profile already exists for user %s", aggregate.UserID()))
	}

	stored, err := cloneAgent(aggregate)
	if err != nil {
		return err
	}

	s.agents[stored.ID()] = stored
	s.byUser[stored.UserID()] = stored.ID()
	return nil
}

// Get retrieves an agent snapshot by id.
func (s *AgentStore) Get(ctx context.Context, id kernel.UUID) (*agent.DeliveryAgent, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.agents[id]
	if !exists {
		return nil, errs.NewObjectNotFoundError("agentID", id.String())
	}

	return cloneAgent(stored)
}

// GetByUserID retrieves the agent snapshot owned by the given user.
func (s *AgentStore) GetByUserID(ctx context.Context, userID kernel.UUID) (*agent.DeliveryAgent, error) {
	if err := userID.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	agentID, exists := s.byUser[userID]
	if !exists {
		return nil, errs.NewObjectNotFoundError("userID", userID.String())
	}

	return cloneAgent(s.agents[agentID])
}

// SetAvailability updates the agent's online/offline switch.
func (s *AgentStore) SetAvailability(ctx context.Context, agentID kernel.UUID, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.locked(agentID)
	if err != nil {
		return err
	}

	stored.SetAvailability(available)
	return nil
}

// SetVerification updates the administrative verification gate.
func (s *AgentStore) SetVerification(ctx context.Context, agentID kernel.UUID, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.locked(agentID)
	if err != nil {
		return err
	}

	stored.SetVerification(verified)
	return nil
}

// SetLocation overwrites the agent's current position.
func (s *AgentStore) SetLocation(ctx context.Context, agentID kernel.UUID, location kernel.GeoPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.locked(agentID)
	if err != nil {
		return err
	}

	return stored.SetLocation(location)
}

// AddActiveOrder appends the order to the agent's active set, set semantics.
func (s *AgentStore) AddActiveOrder(ctx context.Context, agentID kernel.UUID, orderID kernel.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.locked(agentID)
	if err != nil {
		return err
	}

	return stored.AddActiveOrder(orderID)
}

// AddRejectedOrder appends the order to the agent's rejection memory, set
// semantics.
func (s *AgentStore) AddRejectedOrder(ctx context.Context, agentID kernel.UUID, orderID kernel.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.locked(agentID)
	if err != nil {
		return err
	}

	return stored.RejectOrder(orderID)
}

// CompleteActiveOrder moves the order from the active set to the delivery
// history in one step under the store lock.
func (s *AgentStore) CompleteActiveOrder(ctx context.Context, agentID kernel.UUID, orderID kernel.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.locked(agentID)
	if err != nil {
		return err
	}

	if err = stored.CompleteOrder(orderID); err != nil {
		return errs.NewPreconditionFailedErrorWithCause(
			fmt.Sprintf("order %s is not active for agent %s", orderID, agentID), err)
	}

	return nil
}

// locked resolves the stored aggregate; the caller holds the write lock.
func (s *AgentStore) locked(agentID kernel.UUID) (*agent.DeliveryAgent, error) {
	if err := agentID.Validate(); err != nil {
		return nil, err
	}

	stored, exists := s.agents[agentID]
	if !exists {
		return nil, errs.NewObjectNotFoundError("agentID", agentID.String())
	}

	return stored, nil
}

func cloneAgent(a *agent.DeliveryAgent) (*agent.DeliveryAgent, error) {
	return agent.RestoreDeliveryAgent(
		a.ID(), a.UserID(), a.VehicleType(), a.VehicleNumber(),
		a.IsAvailable(), a.IsVerified(), a.CurrentLocation(),
		a.ActiveOrders(), a.RejectedOrders(), a.DeliveryHistory(),
		a.Rating(), a.TotalRatings(),
	)
}
