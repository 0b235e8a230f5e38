package action

import (
	"time"
)

// Status represents the lifecycle state of a pending action. Transitions are
// one-way: pending is the only non-terminal state and can move to approved,
// rejected or expired; approved moves to executed once the post-approval run
// completes. No transition ever returns to pending.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
	StatusExecuted Status = "executed"
)

// Terminal reports whether the status admits no further transition.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusExpired, StatusExecuted:
		return true
	}
	return false
}

// Context carries the origin of the candidate tool call so that the approval
// surface can show where a request came from. It never holds live session
// objects, only identifiers.
type Context struct {
	SessionID string `json:"sessionId,omitempty"`
	AgentName string `json:"agentName,omitempty"`
}

// ExecutionResult records the outcome of the post-approval run. It is set
// exactly once, when the action transitions from approved to executed.
type ExecutionResult struct {
	Success     bool      `json:"success"`
	Preview     string    `json:"preview,omitempty"` // size-capped rendering of the tool output
	Error       string    `json:"error,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

// Pending is a durable record of a tool call awaiting a human decision.
type Pending struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	Tool      string                 `json:"tool"`
	Args      map[string]interface{} `json:"args,omitempty"`
	Status    Status                 `json:"status"`
	Tier      string                 `json:"tier,omitempty"` // effective tier captured at enqueue time
	Reason    string                 `json:"reason,omitempty"`
	Context   Context                `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
	ExpiresAt time.Time              `json:"expiresAt"`

	ResolvedAt *time.Time       `json:"resolvedAt,omitempty"`
	Execution  *ExecutionResult `json:"execution,omitempty"`
}

// Expired reports whether the action passed its deadline at the given moment.
func (p *Pending) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}
