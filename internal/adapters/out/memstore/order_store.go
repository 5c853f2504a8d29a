package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// orderDoc pairs a stored snapshot with its insertion sequence, which keeps
// listing results in a stable creation order.
type orderDoc struct {
	seq      uint64
	snapshot *order.Order
}

// OrderStore is an in-memory ports.OrderStore. The conditional updates
// re-check their predicate against the stored document under the store lock,
// which is exactly the check-and-set a document store performs in a single
// filtered update.
//
// When constructed with a feed, every committed write is emitted to it in
// commit order, mirroring a store-level change stream.
type OrderStore struct {
	mu   sync.RWMutex
	docs map[kernel.UUID]*orderDoc
	seq  uint64
	feed *OrderFeed
}

// NewOrderStore creates an empty in-memory order store. feed may be nil when
// no change stream is needed.
func NewOrderStore(feed *OrderFeed) *OrderStore {
	return &OrderStore{
		docs: make(map[kernel.UUID]*orderDoc),
		feed: feed,
	}
}

// Add persists a new order aggregate and emits the insert to the feed.
func (s *OrderStore) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[aggregate.ID()]; exists {
		return errs.NewConflictError(fmt.Sprintf("order %s already exists", aggregate.ID()))
	}

	stored, err := cloneOrder(aggregate)
	if err != nil {
		return err
	}

	s.seq++
	s.docs[stored.ID()] = &orderDoc{seq: s.seq, snapshot: stored}
	s.emit(stored)
	return nil
}

// Get retrieves an order snapshot by id.
func (s *OrderStore) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.docs[id]
	if !exists {
		return nil, errs.NewObjectNotFoundError("orderID", id.String())
	}

	return cloneOrder(doc.snapshot)
}

// UpdateIfUnassigned persists the aggregate only while the stored order is
// still confirmed with no assigned agent. A racing assign or cancel that
// committed first turns this into a conflict.
func (s *OrderStore) UpdateIfUnassigned(ctx context.Context, aggregate *order.Order) error {
	return s.updateIf(aggregate, func(stored *order.Order) error {
		if stored.Status() != order.Confirmed || stored.AssignedAgent() != nil {
			return errs.NewConflictError(
				fmt.Sprintf("order %s is no longer unassigned", aggregate.ID()))
		}
		return nil
	})
}

// UpdateIfAssignedTo persists the aggregate only while the stored order is
// out for delivery and held by the given agent.
func (s *OrderStore) UpdateIfAssignedTo(ctx context.Context, aggregate *order.Order, agentID kernel.UUID) error {
	return s.updateIf(aggregate, func(stored *order.Order) error {
		holder := stored.AssignedAgent()
		if stored.Status() != order.OutForDelivery || holder == nil || !holder.IsEqual(agentID) {
			return errs.NewConflictError(
				fmt.Sprintf("order %s is not held by agent %s", aggregate.ID(), agentID))
		}
		return nil
	})
}

func (s *OrderStore) updateIf(aggregate *order.Order, predicate func(stored *order.Order) error) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, exists := s.docs[aggregate.ID()]
	if !exists {
		return errs.NewObjectNotFoundError("orderID", aggregate.ID().String())
	}

	if err := predicate(doc.snapshot); err != nil {
		return err
	}

	stored, err := cloneOrder(aggregate)
	if err != nil {
		return err
	}

	doc.snapshot = stored
	s.emit(stored)
	return nil
}

// FindConfirmedUnassigned lists confirmed unassigned orders around near,
// excluding the given ids. Without includeAll the radius cutoff drops orders
// outside it, as well as orders whose pickup location cannot be geo-matched;
// with includeAll every candidate is returned and the ranking deals with
// distance.
func (s *OrderStore) FindConfirmedUnassigned(
	ctx context.Context,
	near kernel.GeoPoint,
	radiusMeters float64,
	excludeIDs []kernel.UUID,
	includeAll bool,
) ([]*order.Order, error) {
	excluded := make(map[kernel.UUID]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	return s.find(func(stored *order.Order) bool {
		if stored.Status() != order.Confirmed || stored.AssignedAgent() != nil {
			return false
		}
		if _, isExcluded := excluded[stored.ID()]; isExcluded {
			return false
		}
		if includeAll {
			return true
		}

		pickup := stored.PickupLocation()
		if pickup == nil {
			return false
		}
		meters, err := near.DistanceTo(*pickup)
		return err == nil && meters <= radiusMeters
	})
}

// FindActiveByAgent lists the out-for-delivery orders held by the agent.
func (s *OrderStore) FindActiveByAgent(ctx context.Context, agentID kernel.UUID) ([]*order.Order, error) {
	return s.find(func(stored *order.Order) bool {
		holder := stored.AssignedAgent()
		return stored.Status() == order.OutForDelivery && holder != nil && holder.IsEqual(agentID)
	})
}

// FindOverdueOutForDelivery lists out-for-delivery orders whose estimated
// delivery time passed before asOf.
func (s *OrderStore) FindOverdueOutForDelivery(ctx context.Context, asOf time.Time) ([]*order.Order, error) {
	return s.find(func(stored *order.Order) bool {
		eta := stored.EstimatedDeliveryTime()
		return stored.Status() == order.OutForDelivery && eta != nil && eta.Before(asOf)
	})
}

// find returns matching snapshots in insertion order.
func (s *OrderStore) find(match func(stored *order.Order) bool) ([]*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*orderDoc, 0)
	for _, doc := range s.docs {
		if match(doc.snapshot) {
			matched = append(matched, doc)
		}
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	results := make([]*order.Order, 0, len(matched))
	for _, doc := range matched {
		clone, err := cloneOrder(doc.snapshot)
		if err != nil {
			return nil, err
		}
		results = append(results, clone)
	}

	return results, nil
}

// emit publishes the committed snapshot to the feed; the caller holds the
// store lock so feed order matches commit order.
func (s *OrderStore) emit(stored *order.Order) {
	if s.feed != nil {
		s.feed.emit(stored)
	}
}

func cloneOrder(o *order.Order) (*order.Order, error) {
	return order.RestoreOrder(
		o.ID(), o.CustomerID(), o.AssignedAgent(), o.PickupLocation(),
		o.Status(), o.History(), o.EstimatedDeliveryTime(), o.ActualDeliveryTime(),
	)
}
