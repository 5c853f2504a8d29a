package ports

// Broadcaster is the outbound contract for real-time status fan-out.
//
// Delivery is at-most-once and best-effort: a publish failure is reported to
// the caller for logging but is never retried and never buffered, and a topic
// with no subscribers is not an error. Live traffic only; clients that need
// history re-read it through the query surface.
type Broadcaster interface {
	// Publish sends the payload to every current subscriber of the topic.
	Publish(topic string, payload any) error
}
