package intercept

import (
	"context"
	"fmt"
	"time"

	"github.com/toolgate/toolgate/extension"
	"github.com/toolgate/toolgate/model/action"
	"github.com/toolgate/toolgate/model/types"
	"github.com/toolgate/toolgate/policy"
	"github.com/toolgate/toolgate/service/approval"
	"github.com/toolgate/toolgate/service/audit"
	"github.com/toolgate/toolgate/tracing"
)

// Actor identifies who (and from where) proposed the tool call.
type Actor struct {
	UserID    string
	SessionID string
	AgentName string
}

// Interceptor is the single mandatory gate every tool call passes through.
// The effective tier is re-derived from the policy resolver on every call;
// no tier value attached to a tool instance is ever trusted, so mutating a
// tool's in-memory state cannot bypass the gate. On any non-auto tier the
// call is queued and the underlying tool is structurally unreachable: the
// deferred branch holds no reference to the tool at all.
type Interceptor struct {
	resolver *policy.Resolver
	registry *extension.Registry
	queue    approval.Service
	auditor  *audit.Logger
	ttl      time.Duration
}

// Option customises the interceptor.
type Option func(*Interceptor)

// WithTTL overrides the TTL applied to queued actions.
func WithTTL(ttl time.Duration) Option {
	return func(i *Interceptor) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// New creates an interceptor. All collaborators are injected explicitly; the
// gate holds no ambient global state.
func New(resolver *policy.Resolver, registry *extension.Registry, queue approval.Service, auditor *audit.Logger, options ...Option) *Interceptor {
	ret := &Interceptor{
		resolver: resolver,
		registry: registry,
		queue:    queue,
		auditor:  auditor,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Invoke gates one candidate tool call.
func (i *Interceptor) Invoke(ctx context.Context, toolName string, args map[string]interface{}, actor Actor) Outcome {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("intercept.Invoke %s", toolName), "INTERNAL")
	outcome := i.invoke(ctx, toolName, args, actor)
	span.WithAttributes(map[string]string{"tool": toolName, "outcome": string(outcome.Kind)})
	tracing.EndSpan(span, outcome.Err)
	return outcome
}

func (i *Interceptor) invoke(ctx context.Context, toolName string, args map[string]interface{}, actor Actor) Outcome {
	tier := i.resolver.EffectiveTier(ctx, actor.UserID, toolName)
	if tier != policy.TierAutoApprove {
		return i.enqueue(ctx, toolName, args, actor, tier)
	}
	return i.execute(ctx, toolName, args, actor, tier)
}

// execute runs the tool immediately and records the result. A tool failure
// on this path is a real error for the caller, not a policy event.
func (i *Interceptor) execute(ctx context.Context, toolName string, args map[string]interface{}, actor Actor, tier policy.Tier) Outcome {
	tool := i.registry.Lookup(toolName)
	if tool == nil {
		// The default policy table only auto-approves known names, but a
		// custom table may list tools absent from the registry.
		return Failed(types.NewToolNotFoundError(toolName))
	}
	result, err := tool.Execute(ctx, args)

	record := audit.Record{
		UserID:         actor.UserID,
		Tool:           toolName,
		Args:           args,
		Tier:           tier,
		ApprovalStatus: audit.StatusAutoApproved,
		SessionID:      actor.SessionID,
		AgentName:      actor.AgentName,
	}
	if err != nil {
		record.ExecutionStatus = audit.ExecError
		record.Err = err
		i.auditor.LogAction(ctx, record)
		return Failed(err)
	}
	record.ExecutionStatus = audit.ExecSuccess
	record.Result = result
	i.auditor.LogAction(ctx, record)
	return Executed(result)
}

// enqueue queues the call for a human decision without ever touching the
// underlying tool.
func (i *Interceptor) enqueue(ctx context.Context, toolName string, args map[string]interface{}, actor Actor, tier policy.Tier) Outcome {
	pending, err := i.queue.Enqueue(ctx, &approval.Request{
		UserID: actor.UserID,
		Tool:   toolName,
		Args:   args,
		Tier:   string(tier),
		TTL:    i.ttl,
		Context: action.Context{
			SessionID: actor.SessionID,
			AgentName: actor.AgentName,
		},
	})
	if err != nil {
		return Failed(fmt.Errorf("action %q requires approval but could not be queued: %w", toolName, err))
	}
	message := fmt.Sprintf("action %q requires approval; queued as %s and awaiting a decision until %s",
		toolName, pending.ID, pending.ExpiresAt.Format(time.RFC3339))
	return Deferred(pending.ID, message)
}
