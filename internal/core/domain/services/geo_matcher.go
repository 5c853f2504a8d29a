package services

import (
	"fmt"
	"sort"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// DistanceUnknown is the sentinel distance for orders whose pickup location
// is missing or unresolvable. It is deliberately not zero: zero is a valid
// distance (agent standing at the pickup point).
const DistanceUnknown float64 = -1

// Candidate is one order in a ranked listing, annotated with the distance
// from the agent's position to the order's pickup location.
type Candidate struct {
	Order *order.Order

	// DistanceMeters is the great-circle distance to the pickup location,
	// or DistanceUnknown when it could not be computed.
	DistanceMeters float64

	// DistanceText is the human-readable rendering of DistanceMeters,
	// empty when the distance is unknown.
	DistanceText string

	// WithinRange reports whether the pickup location falls inside the
	// requested radius. Always false for unknown distances.
	WithinRange bool
}

// GeoMatcher is a domain service that ranks candidate orders for a delivery
// agent by proximity. It is pure: it reads the aggregates it is handed and
// produces a ranking, with no storage or transport side effects.
//
// Key responsibilities:
//   - Computing the great-circle distance from the agent to each pickup point
//   - Sorting candidates by ascending distance
//   - Classifying candidates against a delivery radius
//
// Business rules:
//   - Orders without a resolvable pickup location are never dropped and never
//     abort the listing; they rank last with DistanceUnknown and are excluded
//     from the within-range classification
//   - A distance of exactly the radius counts as within range
//
// Example usage:
//
//	matcher := services.NewGeoMatcher()
//	candidates := matcher.Rank(agentLocation, orders, 2000)
//	for _, c := range candidates {
//	    if c.WithinRange {
//	        // offer c.Order to the agent
//	    }
//	}
type GeoMatcher struct{}

// NewGeoMatcher creates a new GeoMatcher instance.
func NewGeoMatcher() GeoMatcher {
	return GeoMatcher{}
}

// Rank annotates every order with its distance from agentLocation and returns
// the candidates sorted by ascending distance, unknown distances last.
// radiusMeters drives only the WithinRange classification; no order is
// filtered out here. A bad record (nil order, missing pickup, coordinate
// error) degrades to DistanceUnknown for that record alone.
func (m GeoMatcher) Rank(agentLocation kernel.GeoPoint, orders []*order.Order, radiusMeters float64) []Candidate {
	candidates := m.Annotate(agentLocation, orders)

	for i := range candidates {
		c := &candidates[i]
		c.WithinRange = c.DistanceMeters != DistanceUnknown && c.DistanceMeters <= radiusMeters
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].DistanceMeters, candidates[j].DistanceMeters
		if di == DistanceUnknown {
			return false
		}
		if dj == DistanceUnknown {
			return true
		}
		return di < dj
	})

	return candidates
}

// Annotate computes the distance annotation for each order without sorting,
// filtering, or radius classification. It backs the agent's own active-order
// listing, which must show every order regardless of distance.
func (m GeoMatcher) Annotate(agentLocation kernel.GeoPoint, orders []*order.Order) []Candidate {
	candidates := make([]Candidate, 0, len(orders))

	for _, o := range orders {
		if o == nil {
			continue
		}

		candidate := Candidate{Order: o, DistanceMeters: DistanceUnknown}

		if pickup := o.PickupLocation(); pickup != nil {
			if meters, err := agentLocation.DistanceTo(*pickup); err == nil {
				candidate.DistanceMeters = meters
				candidate.DistanceText = FormatDistance(meters)
			}
		}

		candidates = append(candidates, candidate)
	}

	return candidates
}

// FormatDistance renders a distance in metres for listings: integer metres
// under one kilometre, kilometres with two decimals above.
//
//	FormatDistance(750)  == "750 m"
//	FormatDistance(1500) == "1.50 km"
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(meters))
	}
	return fmt.Sprintf("%.2f km", meters/1000)
}
