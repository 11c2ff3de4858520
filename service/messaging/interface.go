package messaging

import (
	"context"
	"errors"
)

// ErrQueueFull is returned by Publish when a bounded queue has no room left.
// Publishers on the dispatch path treat it as a dropped message, never as a
// reason to block.
var ErrQueueFull = errors.New("messaging: queue full")

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue without blocking
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message, blocking until one is available or ctx is done
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}
