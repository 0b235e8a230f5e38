package executor

import (
	"errors"
	"fmt"
)

// ErrToolNotRegistered is returned when no factory exists for the requested
// tool name in the restricted registry.
var ErrToolNotRegistered = errors.New("executor: tool not registered")

// UnsupportedToolError marks a tool that is structurally excluded from
// post-approval execution because its correct operation depends on in-session
// state that cannot be reconstructed later. Such tools fail fast rather than
// attempting a degraded run.
type UnsupportedToolError struct {
	Tool   string
	Reason string
}

func (e *UnsupportedToolError) Error() string {
	return fmt.Sprintf("tool %v cannot run outside its originating session: %v", e.Tool, e.Reason)
}

// ExecutionError wraps a failure raised by the tool's own execution, keeping
// the underlying cause reachable through errors.Unwrap.
type ExecutionError struct {
	Tool  string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %v execution failed: %v", e.Tool, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}
