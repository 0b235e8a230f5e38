package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolgate/toolgate/service/messaging/memory"
	"github.com/toolgate/toolgate/service/notify"
)

func TestQueueNotifierPublishes(t *testing.T) {
	queue := memory.NewQueue[notify.Event](memory.DefaultConfig())
	notifier := notify.NewQueueNotifier(queue, nil)

	notifier.Notify(context.Background(), "u1", notify.KindActionQueued, map[string]interface{}{"actionId": "a1"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	event := message.T()
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, notify.KindActionQueued, event.Kind)
	assert.Equal(t, "a1", event.Payload["actionId"])
	assert.False(t, event.CreatedAt.IsZero())
	assert.NoError(t, message.Ack())
}

func TestQueueNotifierDoesNotBlockWhenQueueFull(t *testing.T) {
	queue := memory.NewQueue[notify.Event](memory.Config{QueueBuffer: 1})
	seed := notify.Event{UserID: "seed"}
	require.NoError(t, queue.Publish(context.Background(), &seed))

	notifier := notify.NewQueueNotifier(queue, nil)
	done := make(chan struct{})
	go func() {
		notifier.Notify(context.Background(), "u1", notify.KindActionResolved, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notify blocked on a full queue")
	}
}

func TestQueueNotifierDropsWhenQueueStaysFull(t *testing.T) {
	queue := memory.NewQueue[notify.Event](memory.Config{QueueBuffer: 1})
	seed := notify.Event{UserID: "seed"}
	require.NoError(t, queue.Publish(context.Background(), &seed))

	notifier := notify.NewQueueNotifier(queue, nil)
	notifier.Notify(context.Background(), "u1", notify.KindActionExpired, nil)

	// Give the detached publish time to run out of patience, then drain the
	// seed message and confirm the event was dropped rather than delivered.
	time.Sleep(300 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "seed", message.T().UserID)
	assert.NoError(t, message.Ack())

	_, err = queue.Consume(ctx)
	assert.Error(t, err)
}

func TestQueueNotifierSurvivesCancelledCaller(t *testing.T) {
	queue := memory.NewQueue[notify.Event](memory.DefaultConfig())
	notifier := notify.NewQueueNotifier(queue, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	notifier.Notify(ctx, "u1", notify.KindActionResolved, nil)

	consumeCtx, consumeCancel := context.WithTimeout(context.Background(), time.Second)
	defer consumeCancel()
	message, err := queue.Consume(consumeCtx)
	require.NoError(t, err)
	assert.Equal(t, notify.KindActionResolved, message.T().Kind)
	assert.NoError(t, message.Ack())
}

func TestNopNotifier(t *testing.T) {
	var notifier notify.Notifier = notify.Nop{}
	assert.NotPanics(t, func() {
		notifier.Notify(context.Background(), "u1", notify.KindActionQueued, nil)
	})
}
