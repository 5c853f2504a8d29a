// Package agentstore persists delivery-agent aggregates as MongoDB documents.
// A unique index on the owning user id enforces the one-profile-per-user rule
// at the database, and the field-scoped updates run as single-document update
// operators so concurrent lifecycle transitions cannot lose writes.
package agentstore

import (
	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
)

const collectionName = "delivery_agents"

const geoJSONPointType = "Point"

// agentDocument is the MongoDB representation of a delivery-agent aggregate.
// The order collections are always present as arrays, possibly empty, so the
// set operators ($addToSet, $pull, $push) can apply to them directly.
type agentDocument struct {
	ID              string        `bson:"_id"`
	UserID          string        `bson:"user_id"`
	VehicleType     string        `bson:"vehicle_type"`
	VehicleNumber   string        `bson:"vehicle_number"`
	IsAvailable     bool          `bson:"is_available"`
	IsVerified      bool          `bson:"is_verified"`
	CurrentLocation *geoJSONPoint `bson:"current_location,omitempty"`
	ActiveOrders    []string      `bson:"active_orders"`
	RejectedOrders  []string      `bson:"rejected_orders"`
	DeliveryHistory []string      `bson:"delivery_history"`
	Rating          float64       `bson:"rating"`
	TotalRatings    int           `bson:"total_ratings"`
}

// geoJSONPoint is a GeoJSON Point embedded document, [longitude, latitude].
type geoJSONPoint struct {
	Type        string     `bson:"type"`
	Coordinates [2]float64 `bson:"coordinates"`
}

// fromDomain converts an agent aggregate to its document representation.
func fromDomain(aggregate *agent.DeliveryAgent) agentDocument {
	return agentDocument{
		ID:              aggregate.ID().String(),
		UserID:          aggregate.UserID().String(),
		VehicleType:     aggregate.VehicleType(),
		VehicleNumber:   aggregate.VehicleNumber(),
		IsAvailable:     aggregate.IsAvailable(),
		IsVerified:      aggregate.IsVerified(),
		CurrentLocation: geoJSONFromPoint(aggregate.CurrentLocation()),
		ActiveOrders:    uuidsToStrings(aggregate.ActiveOrders()),
		RejectedOrders:  uuidsToStrings(aggregate.RejectedOrders()),
		DeliveryHistory: uuidsToStrings(aggregate.DeliveryHistory()),
		Rating:          aggregate.Rating(),
		TotalRatings:    aggregate.TotalRatings(),
	}
}

// toDomain reconstructs an agent aggregate from its document.
func toDomain(doc agentDocument) (*agent.DeliveryAgent, error) {
	id, err := kernel.UUIDFromString(doc.ID)
	if err != nil {
		return nil, err
	}

	userID, err := kernel.UUIDFromString(doc.UserID)
	if err != nil {
		return nil, err
	}

	activeOrders, err := uuidsFromStrings(doc.ActiveOrders)
	if err != nil {
		return nil, err
	}
	rejectedOrders, err := uuidsFromStrings(doc.RejectedOrders)
	if err != nil {
		return nil, err
	}
	deliveryHistory, err := uuidsFromStrings(doc.DeliveryHistory)
	if err != nil {
		return nil, err
	}

	return agent.RestoreDeliveryAgent(
		id,
		userID,
		doc.VehicleType,
		doc.VehicleNumber,
		doc.IsAvailable,
		doc.IsVerified,
		pointFromGeoJSON(doc.CurrentLocation),
		activeOrders,
		rejectedOrders,
		deliveryHistory,
		doc.Rating,
		doc.TotalRatings,
	)
}

func geoJSONFromPoint(point *kernel.GeoPoint) *geoJSONPoint {
	if point == nil {
		return nil
	}

	return &geoJSONPoint{
		Type:        geoJSONPointType,
		Coordinates: [2]float64{point.Longitude(), point.Latitude()},
	}
}

// pointFromGeoJSON degrades out-of-range stored coordinates to nil, the same
// posture the aggregate takes towards never-reported locations.
func pointFromGeoJSON(doc *geoJSONPoint) *kernel.GeoPoint {
	if doc == nil {
		return nil
	}

	point, err := kernel.NewGeoPoint(doc.Coordinates[0], doc.Coordinates[1])
	if err != nil {
		return nil
	}

	return &point
}

func uuidsToStrings(ids []kernel.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func uuidsFromStrings(raw []string) ([]kernel.UUID, error) {
	out := make([]kernel.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := kernel.UUIDFromString(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
