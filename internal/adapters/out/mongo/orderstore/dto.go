// Package orderstore persists order aggregates as MongoDB documents and
// exposes the collection's change stream as the order change feed. Documents
// keep the GeoJSON coordinate convention (longitude first) so the pickup
// location can carry a 2dsphere index for proximity queries.
package orderstore

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

const collectionName = "orders"

// geoJSONPointType is the GeoJSON geometry type for a single position.
const geoJSONPointType = "Point"

// orderDocument is the MongoDB representation of an order aggregate. The
// order id is the document key; the assigned agent stays an explicit null
// while unassigned so the check-and-set filters can match on it.
type orderDocument struct {
	ID                    string                 `bson:"_id"`
	CustomerID            string                 `bson:"customer_id"`
	AssignedAgentID       *string                `bson:"assigned_agent_id"`
	PickupLocation        *geoJSONPoint          `bson:"pickup_location,omitempty"`
	Status                string                 `bson:"status"`
	History               []historyEntryDocument `bson:"status_history"`
	EstimatedDeliveryTime *time.Time             `bson:"estimated_delivery_time,omitempty"`
	ActualDeliveryTime    *time.Time             `bson:"actual_delivery_time,omitempty"`
}

// geoJSONPoint is a GeoJSON Point embedded document: coordinates hold
// [longitude, latitude], the order MongoDB's geospatial operators expect.
type geoJSONPoint struct {
	Type        string     `bson:"type"`
	Coordinates [2]float64 `bson:"coordinates"`
}

// historyEntryDocument is one entry of the embedded status ledger.
type historyEntryDocument struct {
	Status    string        `bson:"status"`
	Timestamp time.Time     `bson:"timestamp"`
	Location  *geoJSONPoint `bson:"location,omitempty"`
	Note      string        `bson:"note,omitempty"`
}

// fromDomain converts an order aggregate to its document representation.
func fromDomain(aggregate *order.Order) orderDocument {
	var agentID *string
	if id := aggregate.AssignedAgent(); id != nil {
		s := id.String()
		agentID = &s
	}

	history := aggregate.History()
	entries := make([]historyEntryDocument, 0, len(history))
	for _, entry := range history {
		entries = append(entries, historyEntryDocument{
			Status:    entry.Status.String(),
			Timestamp: entry.Timestamp,
			Location:  geoJSONFromPoint(entry.Location),
			Note:      entry.Note,
		})
	}

	return orderDocument{
		ID:                    aggregate.ID().String(),
		CustomerID:            aggregate.CustomerID().String(),
		AssignedAgentID:       agentID,
		PickupLocation:        geoJSONFromPoint(aggregate.PickupLocation()),
		Status:                aggregate.Status().String(),
		History:               entries,
		EstimatedDeliveryTime: aggregate.EstimatedDeliveryTime(),
		ActualDeliveryTime:    aggregate.ActualDeliveryTime(),
	}
}

// toDomain reconstructs an order aggregate from its document. Identity and
// status corruption fails the read; a malformed location does not, it degrades
// to nil so the order stays readable and ranks last in candidate listings.
func toDomain(doc orderDocument) (*order.Order, error) {
	id, err := kernel.UUIDFromString(doc.ID)
	if err != nil {
		return nil, err
	}

	customerID, err := kernel.UUIDFromString(doc.CustomerID)
	if err != nil {
		return nil, err
	}

	var agentID *kernel.UUID
	if doc.AssignedAgentID != nil {
		parsed, agentErr := kernel.UUIDFromString(*doc.AssignedAgentID)
		if agentErr != nil {
			return nil, agentErr
		}
		agentID = &parsed
	}

	status, err := order.StatusFromString(doc.Status)
	if err != nil {
		return nil, err
	}

	history := make([]order.HistoryEntry, 0, len(doc.History))
	for _, entry := range doc.History {
		entryStatus, entryErr := order.StatusFromString(entry.Status)
		if entryErr != nil {
			return nil, entryErr
		}
		history = append(history, order.HistoryEntry{
			Status:    entryStatus,
			Timestamp: entry.Timestamp,
			Location:  pointFromGeoJSON(entry.Location),
			Note:      entry.Note,
		})
	}

	return order.RestoreOrder(
		id,
		customerID,
		agentID,
		pointFromGeoJSON(doc.PickupLocation),
		status,
		history,
		doc.EstimatedDeliveryTime,
		doc.ActualDeliveryTime,
	)
}

// geoJSONFromPoint converts an optional position to its GeoJSON document.
func geoJSONFromPoint(point *kernel.GeoPoint) *geoJSONPoint {
	if point == nil {
		return nil
	}

	return &geoJSONPoint{
		Type:        geoJSONPointType,
		Coordinates: [2]float64{point.Longitude(), point.Latitude()},
	}
}

// pointFromGeoJSON converts an optional GeoJSON document back to a position.
// Out-of-range stored coordinates come back as nil rather than an error.
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
