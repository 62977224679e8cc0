// Package messaging abstracts the queues the bridge publishes on: the
// action queue consumed by the downstream emitter and the telemetry queue.
//
// Publication must be idempotent at the consumer: an invocation retried
// wholesale by the trigger infrastructure may re-emit actions it already
// published before failing.
package messaging

import (
	"context"
)

// Vendor names a queue implementation.
type Vendor string

const (
	VendorMemory Vendor = "memory"
	VendorFS     Vendor = "fs"
)

// Queue is an abstract message queue for any payload type.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message, or (nil, nil) when the queue is
	// drained.
	Consume(ctx context.Context) (Message[T], error)
}

// Message is a message retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message.
	T() *T

	// Ack acknowledges successful processing of this message.
	Ack() error

	// Nack indicates failure in processing this message; the queue may
	// redeliver it up to its retry budget.
	Nack(err error) error
}
