package publisher

import "context"

// Publisher pushes scraped recipes to downstream consumers
type Publisher interface {
	// Publish appends a message under key to one of the recipe streams
	Publish(ctx context.Context, key string, message []byte) error

	// TrimStreams caps every recipe stream at the configured length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}

// NoopPublisher drops every message; used when publishing is disabled
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, key string, message []byte) error { return nil }

func (NoopPublisher) TrimStreams(ctx context.Context) error { return nil }

func (NoopPublisher) Close() error { return nil }
