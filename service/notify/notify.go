package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/toolgate/toolgate/internal/clock"
	"github.com/toolgate/toolgate/service/messaging"
)

// Kind identifies the notification event.
type Kind string

const (
	KindActionQueued   Kind = "action.queued"
	KindActionResolved Kind = "action.resolved"
	KindActionExpired  Kind = "action.expired"
)

// Event is the payload handed to the notification boundary.
type Event struct {
	UserID    string                 `json:"userId"`
	Kind      Kind                   `json:"kind"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Notifier is the outbound notification capability. Calls are fire-and-forget:
// implementations must not block the caller on delivery and must swallow
// delivery failures (logging them at most).
type Notifier interface {
	Notify(ctx context.Context, userID string, kind Kind, payload map[string]interface{})
}

// Nop is the documented no-op default used when no notification transport is
// wired in.
type Nop struct{}

// Notify discards the event.
func (Nop) Notify(context.Context, string, Kind, map[string]interface{}) {}

// publishTimeout bounds how long a detached publish may wait for queue
// capacity before the event is dropped.
const publishTimeout = 100 * time.Millisecond

// QueueNotifier publishes events onto a messaging queue for an external
// dispatcher to consume.
type QueueNotifier struct {
	queue   messaging.Queue[Event]
	logger  *slog.Logger
	timeout time.Duration
}

// NewQueueNotifier creates a queue-backed notifier.
func NewQueueNotifier(queue messaging.Queue[Event], logger *slog.Logger) *QueueNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueNotifier{queue: queue, logger: logger, timeout: publishTimeout}
}

// Notify publishes the event asynchronously. The caller is never blocked: the
// publish runs detached from the caller's context, and an event that cannot
// be placed onto a full queue within the internal timeout is logged and
// dropped.
func (n *QueueNotifier) Notify(ctx context.Context, userID string, kind Kind, payload map[string]interface{}) {
	event := &Event{
		UserID:    userID,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: clock.Now(),
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		publishCtx, cancel := context.WithTimeout(detached, n.timeout)
		defer cancel()
		if err := n.queue.Publish(publishCtx, event); err != nil {
			n.logger.Warn("notification dropped", "user", userID, "kind", kind, "error", err)
		}
	}()
}

var (
	_ Notifier = Nop{}
	_ Notifier = (*QueueNotifier)(nil)
)
