package intercept

// OutcomeKind discriminates the result of a gated invocation.
type OutcomeKind string

const (
	// KindExecuted means the tool ran immediately under an auto-approve
	// tier; Result holds its output.
	KindExecuted OutcomeKind = "executed"

	// KindDeferred means the call was queued for a human decision; ActionID
	// identifies the pending action and Message explains the deferral to
	// the agent-facing layer.
	KindDeferred OutcomeKind = "deferred"

	// KindFailed means the invocation did not run and was not queued; Err
	// holds the cause.
	KindFailed OutcomeKind = "failed"
)

// Outcome is the explicit result of passing a tool call through the gate.
// The human-readable message is one field of the deferred variant, never the
// sole signal.
type Outcome struct {
	Kind     OutcomeKind
	Result   interface{}
	ActionID string
	Message  string
	Err      error
}

// Executed builds an executed outcome.
func Executed(result interface{}) Outcome {
	return Outcome{Kind: KindExecuted, Result: result}
}

// Deferred builds a deferred outcome.
func Deferred(actionID, message string) Outcome {
	return Outcome{Kind: KindDeferred, ActionID: actionID, Message: message}
}

// Failed builds a failed outcome.
func Failed(err error) Outcome {
	return Outcome{Kind: KindFailed, Err: err}
}
