package approval

import (
	"context"
	"time"

	"github.com/toolgate/toolgate/model/action"
)

// DefaultTTL is how long a queued action remains approvable.
const DefaultTTL = 24 * time.Hour

// Request carries everything the queue needs to create a pending action.
type Request struct {
	UserID  string
	Tool    string
	Args    map[string]interface{}
	Tier    string
	Context action.Context

	// TTL overrides DefaultTTL when positive.
	TTL time.Duration
}

// Service is the durable queue of tool calls awaiting a human decision.
// All reads and writes are scoped to the owning user.
type Service interface {
	// Enqueue creates a pending action and returns it. The underlying tool
	// is never invoked on this path.
	Enqueue(ctx context.Context, request *Request) (*action.Pending, error)

	// Get returns the action when it exists and belongs to userID.
	Get(ctx context.Context, id, userID string) (*action.Pending, error)

	// List returns the user's actions, newest first.
	List(ctx context.Context, userID string, options ...ListOption) ([]*action.Pending, error)

	// Approve transitions pending to approved, runs the post-approval
	// executor and records the outcome; the returned action reflects the
	// final state. Execution failure is captured in the action and audit
	// trail, not surfaced as an error: the approval itself succeeded.
	Approve(ctx context.Context, id, userID string) (*action.Pending, error)

	// Reject transitions pending to rejected without invoking the tool.
	Reject(ctx context.Context, id, userID, reason string) (*action.Pending, error)

	// ExpireStale transitions every pending action past its deadline to
	// expired and returns how many records changed. Idempotent and safe to
	// run concurrently from multiple workers.
	ExpireStale(ctx context.Context) (int, error)

	// PendingCount returns how many of the user's actions still await a
	// decision.
	PendingCount(ctx context.Context, userID string) (int, error)
}

// ListOption narrows List results.
type ListOption func(*listFilter)

type listFilter struct {
	status action.Status
	tool   string
	limit  int
}

// WithStatus filters by lifecycle status.
func WithStatus(status action.Status) ListOption {
	return func(f *listFilter) { f.status = status }
}

// WithTool filters by tool name.
func WithTool(name string) ListOption {
	return func(f *listFilter) { f.tool = name }
}

// WithLimit caps the number of returned actions.
func WithLimit(limit int) ListOption {
	return func(f *listFilter) { f.limit = limit }
}
