// Package redispubsub implements the broadcast contract on Redis PUBLISH, the
// sink for deployments where subscribers live in other processes. Redis
// pub/sub has the exact semantics the contract asks for: at-most-once, no
// history, a publish with no subscribers quietly reaches nobody.
package redispubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const publishTimeout = 2 * time.Second

// Broadcaster publishes fan-out payloads to Redis channels, one channel per
// topic.
type Broadcaster struct {
	client *redis.Client
}

// NewBroadcaster connects to Redis at addr and verifies the connection with a
// ping.
func NewBroadcaster(addr string) (*Broadcaster, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Broadcaster{client: client}, nil
}

// Publish sends the payload, JSON-encoded, to the topic's channel. Failures
// are returned for the caller to log; nothing is buffered or retried.
func (b *Broadcaster) Publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", topic, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := b.client.Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	return nil
}

// Close releases the Redis connection.
func (b *Broadcaster) Close() error {
	return b.client.Close()
}
