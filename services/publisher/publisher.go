package publisher

// Publisher pushes newly persisted posts to downstream consumers
type Publisher interface {
	// Publish publishes a message under the given key
	Publish(key string, message []byte) error

	// TrimStream trims the stream to the configured maximum length
	TrimStream() error

	// Close closes the publisher connection
	Close() error
}

// NoopPublisher is used when no Redis address is configured
type NoopPublisher struct{}

func (NoopPublisher) Publish(string, []byte) error { return nil }
func (NoopPublisher) TrimStream() error            { return nil }
func (NoopPublisher) Close() error                 { return nil }
