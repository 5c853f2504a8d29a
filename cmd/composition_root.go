package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/hub"
	"dispatch/internal/adapters/out/kafka"
	"dispatch/internal/adapters/out/mongo/agentstore"
	"dispatch/internal/adapters/out/mongo/orderstore"
	"dispatch/internal/adapters/out/redispubsub"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/notifications"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// CompositionRoot wires the object graph: the MongoDB stores, the fan-out
// broadcaster, the change-feed watcher with its notifier, the scheduled
// jobs, and factories for every command and query handler. Construction
// connects to the backing services; Shutdown releases them.
type CompositionRoot struct {
	config Config
	logger *slog.Logger

	mongoClient *mongo.Client
	orderStore  *orderstore.MongoOrderStore
	agentStore  *agentstore.MongoAgentStore

	// broadcaster is the sink handlers and jobs publish to. The concrete
	// redis instance is kept alongside so Shutdown can close it; the hub
	// variant has nothing to release.
	broadcaster      ports.Broadcaster
	redisBroadcaster *redispubsub.Broadcaster
	kafkaProducer    *kafka.OrderChangedProducer

	notifier   *notifications.Notifier
	watcher    *notifications.Watcher
	jobManager *jobs.JobManager
}

// NewCompositionRoot connects to MongoDB, ensures the store indexes, and
// builds the full object graph from the configuration.
func NewCompositionRoot(ctx context.Context, config Config, logger *slog.Logger) (*CompositionRoot, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(config.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err = client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(config.MongoDB)
	orderStore := orderstore.NewMongoOrderStore(db)
	agentStore := agentstore.NewMongoAgentStore(db)

	if err = orderStore.EnsureIndexes(connectCtx); err != nil {
		return nil, fmt.Errorf("ensure order indexes: %w", err)
	}
	if err = agentStore.EnsureIndexes(connectCtx); err != nil {
		return nil, fmt.Errorf("ensure agent indexes: %w", err)
	}

	root := &CompositionRoot{
		config:      config,
		logger:      logger,
		mongoClient: client,
		orderStore:  orderStore,
		agentStore:  agentStore,
	}

	if err = root.buildBroadcaster(); err != nil {
		return nil, err
	}
	if err = root.buildNotificationPipeline(client, db); err != nil {
		return nil, err
	}

	root.jobManager = jobs.NewJobManager(orderStore, root.broadcaster, logger)
	return root, nil
}

func (c *CompositionRoot) buildBroadcaster() error {
	switch c.config.Broadcaster {
	case "", "hub":
		c.broadcaster = hub.NewHub()
	case "redis":
		broadcaster, err := redispubsub.NewBroadcaster(c.config.RedisAddr)
		if err != nil {
			return fmt.Errorf("build redis broadcaster: %w", err)
		}
		c.redisBroadcaster = broadcaster
		c.broadcaster = broadcaster
	default:
		return fmt.Errorf("unknown broadcaster %q", c.config.Broadcaster)
	}

	return nil
}

func (c *CompositionRoot) buildNotificationPipeline(client *mongo.Client, db *mongo.Database) error {
	c.notifier = notifications.NewNotifier(c.broadcaster, c.logger)

	watcherOptions := []notifications.WatcherOption{}
	if c.config.KafkaHost != "" {
		producer, err := kafka.NewOrderChangedProducer(
			strings.Split(c.config.KafkaHost, ","),
			c.config.KafkaOrderChangedTopic,
			c.logger,
		)
		if err != nil {
			return fmt.Errorf("build kafka producer: %w", err)
		}
		c.kafkaProducer = producer
		watcherOptions = append(watcherOptions, notifications.WithIntegrationPublisher(producer))
	}

	feed := orderstore.NewMongoOrderFeed(client, db)
	c.watcher = notifications.NewWatcher(feed, c.notifier, c.logger, watcherOptions...)
	return nil
}

// Start brings up the background machinery: the change-feed watcher and the
// scheduled jobs.
func (c *CompositionRoot) Start() error {
	c.watcher.Start()

	if err := c.jobManager.StartAll(); err != nil {
		c.watcher.Stop()
		return fmt.Errorf("start jobs: %w", err)
	}

	return nil
}

// Shutdown stops producers before closing sinks: jobs and the watcher first
// so nothing publishes into a released connection, then the outbound clients.
func (c *CompositionRoot) Shutdown(ctx context.Context) {
	c.jobManager.StopAll()
	c.watcher.Stop()

	if c.kafkaProducer != nil {
		if err := c.kafkaProducer.Close(); err != nil {
			c.logger.ErrorContext(ctx, "Failed to close kafka producer", "error", err)
		}
	}
	if c.redisBroadcaster != nil {
		if err := c.redisBroadcaster.Close(); err != nil {
			c.logger.ErrorContext(ctx, "Failed to close redis broadcaster", "error", err)
		}
	}
	if err := c.mongoClient.Disconnect(ctx); err != nil {
		c.logger.ErrorContext(ctx, "Failed to disconnect mongo client", "error", err)
	}
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderStore)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderStore)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	return commands.NewAcceptOrderCommandHandler(c.orderStore, c.agentStore)
}

func (c *CompositionRoot) CreateRejectOrderCommandHandler() commands.RejectOrderCommandHandler {
	return commands.NewRejectOrderCommandHandler(c.orderStore, c.agentStore)
}

func (c *CompositionRoot) CreateCompleteOrderCommandHandler() commands.CompleteOrderCommandHandler {
	return commands.NewCompleteOrderCommandHandler(c.orderStore, c.agentStore)
}

func (c *CompositionRoot) CreateRegisterAgentCommandHandler() commands.RegisterAgentCommandHandler {
	return commands.NewRegisterAgentCommandHandler(c.agentStore)
}

func (c *CompositionRoot) CreateSetAvailabilityCommandHandler() commands.SetAvailabilityCommandHandler {
	return commands.NewSetAvailabilityCommandHandler(c.agentStore)
}

func (c *CompositionRoot) CreateUpdateLocationCommandHandler() commands.UpdateLocationCommandHandler {
	return commands.NewUpdateLocationCommandHandler(c.agentStore, c.broadcaster, c.logger)
}

func (c *CompositionRoot) CreateVerifyAgentCommandHandler() commands.VerifyAgentCommandHandler {
	return commands.NewVerifyAgentCommandHandler(c.agentStore)
}

func (c *CompositionRoot) CreateGetNearbyOrdersQueryHandler() queries.GetNearbyOrdersQueryHandler {
	return queries.NewGetNearbyOrdersQueryHandler(c.orderStore, c.agentStore, services.NewGeoMatcher())
}

func (c *CompositionRoot) CreateGetOrderTrackingQueryHandler() queries.GetOrderTrackingQueryHandler {
	return queries.NewGetOrderTrackingQueryHandler(c.orderStore)
}

func (c *CompositionRoot) CreateGetAgentProfileQueryHandler() queries.GetAgentProfileQueryHandler {
	return queries.NewGetAgentProfileQueryHandler(c.agentStore)
}

// CreateHTTPServer assembles the REST server over the full handler set.
func (c *CompositionRoot) CreateHTTPServer() *http.Server {
	return http.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateCancelOrderCommandHandler(),
		c.CreateAcceptOrderCommandHandler(),
		c.CreateRejectOrderCommandHandler(),
		c.CreateCompleteOrderCommandHandler(),
		c.CreateRegisterAgentCommandHandler(),
		c.CreateSetAvailabilityCommandHandler(),
		c.CreateUpdateLocationCommandHandler(),
		c.CreateVerifyAgentCommandHandler(),
		c.CreateGetNearbyOrdersQueryHandler(),
		c.CreateGetOrderTrackingQueryHandler(),
		c.CreateGetAgentProfileQueryHandler(),
		c.config.DefaultRadiusMeters,
		c.logger,
	)
}
