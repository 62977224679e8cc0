package fs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	queuefs "github.com/registrykit/bridge/service/messaging/fs"
)

type payload struct {
	ID string `json:"id"`
}

func newQueue(t *testing.T, maxRetries int) *queuefs.Queue[payload] {
	t.Helper()
	queue, err := queuefs.NewQueue[payload](afs.New(), queuefs.Config{
		BasePath:   t.TempDir(),
		MaxRetries: maxRetries,
	})
	require.NoError(t, err)
	return queue
}

func TestEmptyBasePathRejected(t *testing.T) {
	_, err := queuefs.NewQueue[payload](afs.New(), queuefs.Config{})
	assert.Error(t, err)
}

func TestPublishConsumeAck(t *testing.T) {
	queue := newQueue(t, 3)
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &payload{ID: "a"}))
	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, message)
	assert.Equal(t, "a", message.T().ID)
	require.NoError(t, message.Ack())

	drained, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, drained)
}

func TestConsumeOnEmptySpool(t *testing.T) {
	queue := newQueue(t, 3)
	message, err := queue.Consume(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, message)
}

func TestNackRequeues(t *testing.T) {
	queue := newQueue(t, 3)
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &payload{ID: "a"}))
	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, message.Nack(assert.AnError))

	redelivered, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, redelivered, "nacked message returns to the pending spool")
	assert.Equal(t, "a", redelivered.T().ID)
	require.NoError(t, redelivered.Ack())
}

func TestNackExhaustionDeadLetters(t *testing.T) {
	queue := newQueue(t, 0)
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &payload{ID: "a"}))
	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, message.Nack(assert.AnError))

	drained, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, drained, "exhausted message is parked in the dlq, not redelivered")
}
