package intercept

import (
	"context"

	"github.com/toolgate/toolgate/model/types"
)

// Gated composes the gate around a concrete tool as a wrapper implementing
// the same Tool capability. Callers holding a Gated value cannot reach the
// wrapped tool: every Execute goes through the interceptor, which re-derives
// the tier from the registry, so later mutation of the wrapped instance
// cannot bypass gating.
type Gated struct {
	tool  types.Tool
	gate  *Interceptor
	actor Actor
}

// Wrap builds a gated wrapper for a tool on behalf of an actor.
func Wrap(tool types.Tool, gate *Interceptor, actor Actor) *Gated {
	return &Gated{tool: tool, gate: gate, actor: actor}
}

// Definition returns the wrapped tool's definition.
func (g *Gated) Definition() types.Definition {
	return g.tool.Definition()
}

// Execute routes the call through the gate. A deferred outcome is surfaced
// as a structured result describing the pending action; a failed outcome
// propagates the error.
func (g *Gated) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	outcome := g.gate.Invoke(ctx, g.tool.Definition().Name, args, g.actor)
	switch outcome.Kind {
	case KindExecuted:
		return outcome.Result, nil
	case KindDeferred:
		return map[string]interface{}{
			"status":   "pending_approval",
			"actionId": outcome.ActionID,
			"message":  outcome.Message,
		}, nil
	default:
		return nil, outcome.Err
	}
}

var _ types.Tool = (*Gated)(nil)
