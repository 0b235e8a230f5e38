package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/toolgate/toolgate/policy"
)

// Status records how the gate decided about an invocation.
type Status string

const (
	StatusAutoApproved Status = "auto_approved"
	StatusUserApproved Status = "user_approved"
	StatusUserRejected Status = "user_rejected"
	StatusExpired      Status = "expired"
)

// ExecStatus records whether the underlying tool ran and how it ended.
type ExecStatus string

const (
	ExecSuccess ExecStatus = "success"
	ExecError   ExecStatus = "error"
	ExecSkipped ExecStatus = "skipped"
)

// Entry is one immutable audit record. Entries are never updated or deleted
// after creation; arguments are stored as a one-way hash rather than raw
// values, and result/error previews are length-capped before storage.
type Entry struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	Tool            string      `json:"tool"`
	ArgsHash        string      `json:"argsHash,omitempty"`
	Tier            policy.Tier `json:"tier,omitempty"`
	ApprovalStatus  Status      `json:"approvalStatus"`
	ExecutionStatus ExecStatus  `json:"executionStatus,omitempty"`
	ResultPreview   string      `json:"resultPreview,omitempty"`
	ErrorMessage    string      `json:"errorMessage,omitempty"`
	PendingActionID string      `json:"pendingActionId,omitempty"`
	SessionID       string      `json:"sessionId,omitempty"`
	AgentName       string      `json:"agentName,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// HashArgs produces a stable one-way hash of a tool argument map. The map is
// serialised as JSON (encoding/json orders map keys lexically, so equal maps
// hash equally) and digested with SHA-256.
func HashArgs(args map[string]interface{}) string {
	if len(args) == 0 {
		return ""
	}
	data, err := json.Marshal(args)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
