package cmd

// Config carries the process configuration read from the environment.
//
// Broadcaster selects the fan-out sink: "hub" (the default) keeps topic
// subscriptions process-local, "redis" publishes them to Redis channels so
// subscribers in other processes receive them. KafkaHost is optional; when
// empty the durable order-changed feed is disabled and only the live topic
// fan-out runs.
type Config struct {
	HTTPPort               string
	MongoURI               string
	MongoDB                string
	Broadcaster            string
	RedisAddr              string
	KafkaHost              string
	KafkaOrderChangedTopic string
	DefaultRadiusMeters    float64
}
