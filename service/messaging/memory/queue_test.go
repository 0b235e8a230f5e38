package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolgate/toolgate/service/messaging/memory"
)

type payload struct {
	ID string
}

func TestPublishConsumeAck(t *testing.T) {
	ctx := context.Background()
	queue := memory.NewQueue[payload](memory.DefaultConfig())

	require.NoError(t, queue.Publish(ctx, &payload{ID: "m1"}))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m1", message.T().ID)
	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack(), "double ack is rejected")
	assert.Equal(t, 0, queue.Size())
}

func TestConsumeHonoursContext(t *testing.T) {
	queue := memory.NewQueue[payload](memory.DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNackRetriesThenDeadLetters(t *testing.T) {
	ctx := context.Background()
	config := memory.Config{MaxRetries: 2, RetryDelay: time.Millisecond, DeadLetter: true, QueueBuffer: 10}
	queue := memory.NewQueue[payload](config)

	require.NoError(t, queue.Publish(ctx, &payload{ID: "m1"}))

	failure := errors.New("handler failed")
	for i := 0; i <= config.MaxRetries; i++ {
		consumeCtx, cancel := context.WithTimeout(ctx, time.Second)
		message, err := queue.Consume(consumeCtx)
		cancel()
		require.NoError(t, err)
		require.NoError(t, message.Nack(failure))
	}

	assert.Eventually(t, func() bool { return queue.DLQSize() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, queue.Size())
}
