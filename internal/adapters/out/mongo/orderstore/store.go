package orderstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoOrderStore implements the order store contract on a MongoDB
// collection. Whole aggregates are persisted as single documents, so every
// write is atomic without transactions; the conditional updates express the
// assignment races as server-side check-and-set filters.
type MongoOrderStore struct {
	collection *mongo.Collection
}

// NewMongoOrderStore creates an order store backed by the orders collection
// of the given database.
func NewMongoOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{
		collection: db.Collection(collectionName),
	}
}

// EnsureIndexes creates the indexes the store queries rely on: the 2dsphere
// index behind the proximity filter and compound indexes for the status
// scans. Index creation is idempotent, so this runs on every startup.
//
// The 2dsphere index skips documents without a pickup location, which is what
// keeps location-less orders out of radius-filtered listings.
func (s *MongoOrderStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "pickup_location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "assigned_agent_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "estimated_delivery_time", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}
	return nil
}

// Add persists a new order aggregate. Re-adding an existing order id is a
// conflict.
func (s *MongoOrderStore) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	if _, err := s.collection.InsertOne(ctx, fromDomain(aggregate)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.NewConflictErrorWithCause(
				fmt.Sprintf("order %s already exists", aggregate.ID()), err)
		}
		return err
	}

	return nil
}

// Get retrieves an order aggregate by id.
func (s *MongoOrderStore) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var doc orderDocument
	if err := s.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NewObjectNotFoundError("orderID", id.String())
		}
		return nil, err
	}

	return toDomain(doc)
}

// UpdateIfUnassigned persists the aggregate only while the stored document is
// still confirmed with a null assigned agent. A racing assign or cancel that
// committed first turns this into a conflict.
func (s *MongoOrderStore) UpdateIfUnassigned(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	filter := bson.M{
		"_id":               aggregate.ID().String(),
		"status":            order.Confirmed.String(),
		"assigned_agent_id": nil,
	}

	return s.replaceIf(ctx, filter, aggregate,
		fmt.Sprintf("order %s is no longer unassigned", aggregate.ID()))
}

// UpdateIfAssignedTo persists the aggregate only while the stored document is
// out for delivery and held by the given agent.
func (s *MongoOrderStore) UpdateIfAssignedTo(ctx context.Context, aggregate *order.Order, agentID kernel.UUID) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if err := agentID.Validate(); err != nil {
		return err
	}

	filter := bson.M{
		"_id":               aggregate.ID().String(),
		"status":            order.OutForDelivery.String(),
		"assigned_agent_id": agentID.String(),
	}

	return s.replaceIf(ctx, filter, aggregate,
		fmt.Sprintf("order %s is not held by agent %s", aggregate.ID(), agentID))
}

// replaceIf runs one conditional whole-document replacement. MongoDB matches
// the predicate and swaps the document in a single atomic step, so the losing
// side of a race can never overwrite the winner. A zero match is
// disambiguated with a key lookup: missing document means not found, an
// existing one that stopped satisfying the predicate means conflict.
func (s *MongoOrderStore) replaceIf(ctx context.Context, filter bson.M, aggregate *order.Order, conflictReason string) error {
	result, err := s.collection.ReplaceOne(ctx, filter, fromDomain(aggregate))
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	count, err := s.collection.CountDocuments(ctx, bson.M{"_id": aggregate.ID().String()})
	if err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("orderID", aggregate.ID().String())
	}

	return errs.NewConflictError(conflictReason)
}

// FindConfirmedUnassigned lists confirmed unassigned orders around near,
// excluding the given ids. Without includeAll the $nearSphere stage applies
// the radius cutoff and returns candidates nearest first; with includeAll the
// geo stage is skipped so every candidate reaches the ranking, including
// orders without a resolvable pickup location.
func (s *MongoOrderStore) FindConfirmedUnassigned(
	ctx context.Context,
	near kernel.GeoPoint,
	radiusMeters float64,
	excludeIDs []kernel.UUID,
	includeAll bool,
) ([]*order.Order, error) {
	filter := bson.M{
		"status":            order.Confirmed.String(),
		"assigned_agent_id": nil,
	}
	if len(excludeIDs) > 0 {
		filter["_id"] = bson.M{"$nin": uuidsToStrings(excludeIDs)}
	}
	if !includeAll {
		if err := near.Validate(); err != nil {
			return nil, err
		}
		filter["pickup_location"] = bson.M{
			"$nearSphere": bson.M{
				"$geometry":    geoJSONFromPoint(&near),
				"$maxDistance": radiusMeters,
			},
		}
	}

	return s.find(ctx, filter)
}

// FindActiveByAgent lists the out-for-delivery orders held by the agent.
func (s *MongoOrderStore) FindActiveByAgent(ctx context.Context, agentID kernel.UUID) ([]*order.Order, error) {
	if err := agentID.Validate(); err != nil {
		return nil, err
	}

	return s.find(ctx, bson.M{
		"status":            order.OutForDelivery.String(),
		"assigned_agent_id": agentID.String(),
	})
}

// FindOverdueOutForDelivery lists out-for-delivery orders whose estimated
// delivery time passed before asOf.
func (s *MongoOrderStore) FindOverdueOutForDelivery(ctx context.Context, asOf time.Time) ([]*order.Order, error) {
	return s.find(ctx, bson.M{
		"status":                  order.OutForDelivery.String(),
		"estimated_delivery_time": bson.M{"$lt": asOf},
	})
}

func (s *MongoOrderStore) find(ctx context.Context, filter bson.M) ([]*order.Order, error) {
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(docs))
	for _, doc := range docs {
		aggregate, err := toDomain(doc)
		if err != nil {
			return nil, err
		}
		orders = append(orders, aggregate)
	}

	return orders, nil
}

func uuidsToStrings(ids []kernel.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
