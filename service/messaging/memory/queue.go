package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/registrykit/bridge/internal/idgen"
	"github.com/registrykit/bridge/service/messaging"
)

// Config for the in-memory queue.
type Config struct {
	MaxRetries  int
	RetryDelay  time.Duration
	QueueBuffer int
}

// DefaultConfig returns the standard in-memory queue configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		RetryDelay:  100 * time.Millisecond,
		QueueBuffer: 100,
	}
}

// Queue is an in-memory messaging.Queue backed by a buffered channel.
// Nacked messages are redelivered after RetryDelay until MaxRetries is
// exceeded, then parked on the dead-letter list.
type Queue[T any] struct {
	config   Config
	messages chan *message[T]

	dlqMu sync.Mutex
	dlq   []*message[T]
}

// NewQueue creates an in-memory queue.
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		config:   config,
		messages: make(chan *message[T], config.QueueBuffer),
	}
}

// Publish adds a payload to the queue.
func (q *Queue[T]) Publish(_ context.Context, t *T) error {
	msg := &message[T]{id: idgen.New(), payload: *t, queue: q}
	select {
	case q.messages <- msg:
		return nil
	default:
		return fmt.Errorf("memory queue: buffer full (%d)", cap(q.messages))
	}
}

// Consume returns the next message, or (nil, nil) when the queue is empty.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return nil, nil
	}
}

// DeadLetters returns the messages that exhausted their retry budget.
func (q *Queue[T]) DeadLetters() []*T {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	out := make([]*T, 0, len(q.dlq))
	for _, msg := range q.dlq {
		out = append(out, &msg.payload)
	}
	return out
}

func (q *Queue[T]) requeue(msg *message[T]) {
	time.Sleep(q.config.RetryDelay)
	next := &message[T]{id: msg.id, payload: msg.payload, queue: q, retries: msg.retries}
	select {
	case q.messages <- next:
	default:
		q.deadLetter(next)
	}
}

func (q *Queue[T]) deadLetter(msg *message[T]) {
	q.dlqMu.Lock()
	q.dlq = append(q.dlq, msg)
	q.dlqMu.Unlock()
}

type message[T any] struct {
	id      string
	payload T
	queue   *Queue[T]
	retries int

	mu        sync.Mutex
	processed bool
}

// T returns the message payload.
func (m *message[T]) T() *T {
	return &m.payload
}

// Ack marks the message as processed.
func (m *message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.id)
	}
	m.processed = true
	return nil
}

// Nack schedules a redelivery, or dead-letters the message once the retry
// budget is spent.
func (m *message[T]) Nack(error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %s already processed", m.id)
	}
	m.processed = true
	m.retries++
	if m.retries > m.queue.config.MaxRetries {
		m.queue.deadLetter(m)
		return nil
	}
	go m.queue.requeue(m)
	return nil
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
