package agentstore

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAgentStore implements the agent store contract on a MongoDB
// collection.
type MongoAgentStore struct {
	collection *mongo.Collection
}

// NewMongoAgentStore creates an agent store backed by the delivery-agents
// collection of the given database.
func NewMongoAgentStore(db *mongo.Database) *MongoAgentStore {
	return &MongoAgentStore{
		collection: db.Collection(collectionName),
	}
}

// EnsureIndexes creates the unique index that enforces one agent profile per
// user account. Idempotent, runs on every startup.
func (s *MongoAgentStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create agent indexes: %w", err)
	}
	return nil
}

// Add persists a newly registered agent. The unique user index turns a second
// profile for the same user into a duplicate-key error, reported as conflict.
func (s *MongoAgentStore) Add(ctx context.Context, aggregate *agent.DeliveryAgent) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	if _, err := s.collection.InsertOne(ctx, fromDomain(aggregate)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.NewConflictErrorWithCause(
				fmt.Sprintf("agent profile already exists for user %s", aggregate.UserID()), err)
		}
		return err
	}

	return nil
}

// Get retrieves an agent aggregate by id.
func (s *MongoAgentStore) Get(ctx context.Context, id kernel.UUID) (*agent.DeliveryAgent, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	return s.getOne(ctx, bson.M{"_id": id.String()}, "agentID", id.String())
}

// GetByUserID retrieves the agent profile owned by the given user.
func (s *MongoAgentStore) GetByUserID(ctx context.Context, userID kernel.UUID) (*agent.DeliveryAgent, error) {
	if err := userID.Validate(); err != nil {
		return nil, err
	}

	return s.getOne(ctx, bson.M{"user_id": userID.String()}, "userID", userID.String())
}

// SetAvailability updates the agent's online/offline switch.
func (s *MongoAgentStore) SetAvailability(ctx context.Context, agentID kernel.UUID, available bool) error {
	return s.updateByID(ctx, agentID, bson.M{"$set": bson.M{"is_available": available}})
}

// SetVerification updates the administrative verification gate.
func (s *MongoAgentStore) SetVerification(ctx context.Context, agentID kernel.UUID, verified bool) error {
	return s.updateByID(ctx, agentID, bson.M{"$set": bson.M{"is_verified": verified}})
}

// SetLocation overwrites the agent's current position.
func (s *MongoAgentStore) SetLocation(ctx context.Context, agentID kernel.UUID, location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}

	return s.updateByID(ctx, agentID, bson.M{"$set": bson.M{"current_location": geoJSONFromPoint(&location)}})
}

// AddActiveOrder appends the order to the agent's active set. $addToSet gives
// the operation set semantics, so re-adding a held order changes nothing.
func (s *MongoAgentStore) AddActiveOrder(ctx context.Context, agentID kernel.UUID, orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	return s.updateByID(ctx, agentID, bson.M{"$addToSet": bson.M{"active_orders": orderID.String()}})
}

// AddRejectedOrder appends the order to the agent's rejection memory, set
// semantics.
func (s *MongoAgentStore) AddRejectedOrder(ctx context.Context, agentID kernel.UUID, orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	return s.updateByID(ctx, agentID, bson.M{"$addToSet": bson.M{"rejected_orders": orderID.String()}})
}

// CompleteActiveOrder moves the order from the active set to the end of the
// delivery history. The filter requires the order to be in the active set, so
// the pull and push happen in one atomic document update or not at all.
func (s *MongoAgentStore) CompleteActiveOrder(ctx context.Context, agentID kernel.UUID, orderID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}
	if err := orderID.Validate(); err != nil {
		return err
	}

	filter := bson.M{
		"_id":           agentID.String(),
		"active_orders": orderID.String(),
	}
	update := bson.M{
		"$pull": bson.M{"active_orders": orderID.String()},
		"$push": bson.M{"delivery_history": orderID.String()},
	}

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	count, err := s.collection.CountDocuments(ctx, bson.M{"_id": agentID.String()})
	if err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("agentID", agentID.String())
	}

	return errs.NewPreconditionFailedErrorWithCause(
		fmt.Sprintf("order %s is not active for agent %s", orderID, agentID),
		agent.ErrOrderIsNotActive)
}

func (s *MongoAgentStore) getOne(ctx context.Context, filter bson.M, paramName, id string) (*agent.DeliveryAgent, error) {
	var doc agentDocument
	if err := s.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NewObjectNotFoundError(paramName, id)
		}
		return nil, err
	}

	return toDomain(doc)
}

func (s *MongoAgentStore) updateByID(ctx context.Context, agentID kernel.UUID, update bson.M) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	result, err := s.collection.UpdateByID(ctx, agentID.String(), update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errs.NewObjectNotFoundError("agentID", agentID.String())
	}

	return nil
}
