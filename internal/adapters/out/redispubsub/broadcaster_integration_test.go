package redispubsub_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dispatch/internal/adapters/out/redispubsub"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RedisBroadcasterTestSuite provides integration tests for the Redis
// broadcaster using a Redis container.
type RedisBroadcasterTestSuite struct {
	suite.Suite
	container   testcontainers.Container
	addr        string
	broadcaster *redispubsub.Broadcaster
}

func (suite *RedisBroadcasterTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	suite.Require().NoError(err)
	suite.container = container

	addr, err := container.Endpoint(ctx, "")
	suite.Require().NoError(err)
	suite.addr = addr

	broadcaster, err := redispubsub.NewBroadcaster(addr)
	suite.Require().NoError(err)
	suite.broadcaster = broadcaster
}

func (suite *RedisBroadcasterTestSuite) TearDownSuite() {
	if suite.broadcaster != nil {
		suite.Require().NoError(suite.broadcaster.Close())
	}
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *RedisBroadcasterTestSuite) TestPublish_ReachesChannelSubscribers() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subscriber := redis.NewClient(&redis.Options{Addr: suite.addr})
	defer func() { _ = subscriber.Close() }()

	pubsub := subscriber.Subscribe(ctx, "order:42")
	defer func() { _ = pubsub.Close() }()

	// Wait for the subscription handshake so the publish cannot win the race.
	_, err := pubsub.Receive(ctx)
	suite.Require().NoError(err)

	payload := map[string]string{"type": "status_changed", "status": "out_for_delivery"}
	suite.Require().NoError(suite.broadcaster.Publish("order:42", payload))

	select {
	case message := <-pubsub.Channel():
		suite.Equal("order:42", message.Channel)

		var decoded map[string]string
		suite.Require().NoError(json.Unmarshal([]byte(message.Payload), &decoded))
		suite.Equal(payload, decoded)
	case <-ctx.Done():
		suite.Fail("no message arrived on the subscribed channel")
	}
}

func (suite *RedisBroadcasterTestSuite) TestPublish_WithoutSubscribersIsNotAnError() {
	suite.Require().NoError(suite.broadcaster.Publish("order:no-listeners", "delivered"))
}

func (suite *RedisBroadcasterTestSuite) TestPublish_UnmarshalablePayloadFails() {
	err := suite.broadcaster.Publish("order:42", func() {})
	suite.Require().Error(err)
}

func (suite *RedisBroadcasterTestSuite) TestNewBroadcaster_UnreachableAddressFails() {
	_, err := redispubsub.NewBroadcaster("127.0.0.1:1")
	suite.Require().Error(err)
}

func TestRedisBroadcasterTestSuite(t *testing.T) {
	suite.Run(t, new(RedisBroadcasterTestSuite))
}
