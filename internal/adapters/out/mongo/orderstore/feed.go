package orderstore

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	readinessPingTimeout   = 2 * time.Second
	readinessProbeInterval = time.Second
)

// ErrCursorClosed is returned by Next after the cursor was closed.
var ErrCursorClosed = errors.New("order change cursor is closed")

// MongoOrderFeed exposes the orders collection's change stream as the order
// change feed. Change streams deliver committed writes in commit order and
// hand out resume tokens, which is exactly the contract the status watcher
// needs; they do require the deployment to run as a replica set.
type MongoOrderFeed struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoOrderFeed creates a feed over the orders collection of the given
// database.
func NewMongoOrderFeed(client *mongo.Client, db *mongo.Database) *MongoOrderFeed {
	return &MongoOrderFeed{
		client:     client,
		collection: db.Collection(collectionName),
	}
}

// Watch opens a change stream over order writes. The fullDocument lookup
// resolves every event to the complete post-change document, so consumers get
// whole order snapshots rather than field deltas. With a resume token the
// stream continues right after the token's position; the server rejects
// tokens it cannot place, which surfaces here as a Watch error.
func (f *MongoOrderFeed) Watch(ctx context.Context, resumeAfter ports.ResumeToken) (ports.OrderChangeCursor, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": bson.A{"insert", "update", "replace"}},
		}}},
	}

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	if resumeAfter != nil {
		opts.SetResumeAfter(bson.Raw(resumeAfter))
	}

	stream, err := f.collection.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, err
	}

	return &changeCursor{stream: stream}, nil
}

// WaitReady blocks until the deployment answers a ping or the context is
// done. The watcher parks here while the database is unreachable instead of
// spinning on Watch.
func (f *MongoOrderFeed) WaitReady(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pingCtx, cancel := context.WithTimeout(ctx, readinessPingTimeout)
		err := f.client.Ping(pingCtx, readpref.Primary())
		cancel()
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readinessProbeInterval):
		}
	}
}

// changeEvent is the slice of the change stream event the cursor decodes: the
// post-change order document resolved by the fullDocument lookup.
type changeEvent struct {
	FullDocument *orderDocument `bson:"fullDocument"`
}

type changeCursor struct {
	stream *mongo.ChangeStream
	token  ports.ResumeToken
}

// Next blocks until the next committed order change, the stream fails, or the
// context is done.
func (c *changeCursor) Next(ctx context.Context) (*order.Order, error) {
	for c.stream.Next(ctx) {
		var event changeEvent
		if err := c.stream.Decode(&event); err != nil {
			return nil, err
		}

		// An update event can lose its document lookup to a concurrent
		// delete; there is nothing to deliver then.
		if event.FullDocument == nil {
			continue
		}

		aggregate, err := toDomain(*event.FullDocument)
		if err != nil {
			return nil, err
		}

		c.token = ports.ResumeToken(c.stream.ResumeToken())
		return aggregate, nil
	}

	if err := c.stream.Err(); err != nil {
		return nil, err
	}

	return nil, ErrCursorClosed
}

// ResumeToken returns the token of the last delivered change, nil before the
// first delivery.
func (c *changeCursor) ResumeToken() ports.ResumeToken {
	return c.token
}

// Close releases the server-side stream. Safe to call after a failed Next.
func (c *changeCursor) Close(ctx context.Context) error {
	return c.stream.Close(ctx)
}
