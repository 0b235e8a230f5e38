package intercept_test

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolgate/toolgate/extension"
	"github.com/toolgate/toolgate/model/action"
	"github.com/toolgate/toolgate/model/types"
	"github.com/toolgate/toolgate/policy"
	"github.com/toolgate/toolgate/service/approval"
	"github.com/toolgate/toolgate/service/audit"
	"github.com/toolgate/toolgate/service/dao"
	"github.com/toolgate/toolgate/service/dao/store"
	"github.com/toolgate/toolgate/service/intercept"
)

type countingTool struct {
	name   string
	calls  int64
	result interface{}
	err    error
}

func (t *countingTool) Definition() types.Definition {
	return types.Definition{Name: t.name, Args: reflect.TypeOf(&struct{}{})}
}

func (t *countingTool) Execute(context.Context, map[string]interface{}) (interface{}, error) {
	atomic.AddInt64(&t.calls, 1)
	return t.result, t.err
}

func (t *countingTool) callCount() int64 { return atomic.LoadInt64(&t.calls) }

type fixture struct {
	gate     *intercept.Interceptor
	queue    approval.Service
	auditor  *audit.Logger
	registry *extension.Registry
	actions  dao.Conditional[string, action.Pending]
}

type nopRunner struct{}

func (nopRunner) Execute(context.Context, string, map[string]interface{}, string, string) (interface{}, error) {
	return nil, nil
}

func newFixture(actions dao.Conditional[string, action.Pending], tools ...types.Tool) *fixture {
	if actions == nil {
		actions = store.NewMemoryStore[string, action.Pending](func(a *action.Pending) string { return a.ID })
	}
	entries := store.NewMemoryStore[string, audit.Entry](func(e *audit.Entry) string { return e.ID })
	preferences := store.NewMemoryStore[string, policy.UserPreference](func(p *policy.UserPreference) string { return p.ID })
	auditor := audit.New(entries)
	resolver := policy.NewResolver(policy.DefaultTable(), preferences)
	registry := extension.NewRegistry()
	for _, tool := range tools {
		registry.Register(tool)
	}
	queue := approval.New(actions, nopRunner{}, auditor)
	return &fixture{
		gate:     intercept.New(resolver, registry, queue, auditor),
		queue:    queue,
		auditor:  auditor,
		registry: registry,
		actions:  actions,
	}
}

var actor = intercept.Actor{UserID: "u1", SessionID: "s1", AgentName: "agent"}

func TestInvokeAutoApproved(t *testing.T) {
	ctx := context.Background()
	tool := &countingTool{name: "get_tasks", result: []string{"a"}}
	f := newFixture(nil, tool)

	outcome := f.gate.Invoke(ctx, "get_tasks", map[string]interface{}{"userId": "u1"}, actor)

	assert.Equal(t, intercept.KindExecuted, outcome.Kind)
	assert.Equal(t, []string{"a"}, outcome.Result)
	assert.EqualValues(t, 1, tool.callCount())

	entries, err := f.auditor.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.StatusAutoApproved, entries[0].ApprovalStatus)
	assert.Equal(t, audit.ExecSuccess, entries[0].ExecutionStatus)
	assert.NotEmpty(t, entries[0].ArgsHash)
}

func TestInvokeAutoApprovedToolError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("upstream gone")
	tool := &countingTool{name: "get_tasks", err: boom}
	f := newFixture(nil, tool)

	outcome := f.gate.Invoke(ctx, "get_tasks", nil, actor)

	assert.Equal(t, intercept.KindFailed, outcome.Kind)
	assert.ErrorIs(t, outcome.Err, boom)

	entries, _ := f.auditor.List(ctx, "u1")
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ExecError, entries[0].ExecutionStatus)
	assert.Contains(t, entries[0].ErrorMessage, "upstream gone")
}

func TestInvokeDeferred(t *testing.T) {
	ctx := context.Background()
	tool := &countingTool{name: "file_write"}
	f := newFixture(nil, tool)

	outcome := f.gate.Invoke(ctx, "file_write", map[string]interface{}{"url": "/tmp/x"}, actor)

	assert.Equal(t, intercept.KindDeferred, outcome.Kind)
	assert.NotEmpty(t, outcome.ActionID)
	assert.Contains(t, outcome.Message, "requires approval")
	assert.EqualValues(t, 0, tool.callCount(), "deferred calls must never touch the tool")

	pending, err := f.queue.Get(ctx, outcome.ActionID, "u1")
	require.NoError(t, err)
	assert.Equal(t, action.StatusPending, pending.Status)
	assert.Equal(t, "file_write", pending.Tool)
	assert.Equal(t, "s1", pending.Context.SessionID)

	// Queuing alone leaves no audit entry; the trail records resolutions.
	entries, _ := f.auditor.List(ctx, "u1")
	assert.Empty(t, entries)
}

func TestInvokeUnknownToolDefers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	// Unknown names fall back to requires-approval, so even an unregistered
	// tool is parked rather than rejected outright.
	outcome := f.gate.Invoke(ctx, "mystery_tool", nil, actor)
	assert.Equal(t, intercept.KindDeferred, outcome.Kind)
}

func TestInvokeAutoApprovedUnregisteredTool(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	outcome := f.gate.Invoke(ctx, "get_tasks", nil, actor)
	assert.Equal(t, intercept.KindFailed, outcome.Kind)
	assert.Error(t, outcome.Err)
}

type failingActionStore struct {
	dao.Conditional[string, action.Pending]
}

func (f *failingActionStore) Save(context.Context, *action.Pending) error {
	return errors.New("store offline")
}

func TestInvokeQueueUnavailable(t *testing.T) {
	ctx := context.Background()
	actions := store.NewMemoryStore[string, action.Pending](func(a *action.Pending) string { return a.ID })
	tool := &countingTool{name: "file_write"}
	f := newFixture(&failingActionStore{Conditional: actions}, tool)

	// When the queue cannot accept the action the call fails loudly; it is
	// never silently executed instead.
	outcome := f.gate.Invoke(ctx, "file_write", nil, actor)
	assert.Equal(t, intercept.KindFailed, outcome.Kind)
	assert.ErrorIs(t, outcome.Err, approval.ErrQueueUnavailable)
	assert.EqualValues(t, 0, tool.callCount())
}

func TestGatedTool(t *testing.T) {
	ctx := context.Background()
	auto := &countingTool{name: "get_tasks", result: "done"}
	deferred := &countingTool{name: "file_write"}
	f := newFixture(nil, auto, deferred)

	gated := intercept.Wrap(auto, f.gate, actor)
	result, err := gated.Execute(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "done", result)

	gated = intercept.Wrap(deferred, f.gate, actor)
	result, err = gated.Execute(ctx, nil)
	require.NoError(t, err)
	body, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "pending_approval", body["status"])
	assert.NotEmpty(t, body["actionId"])
	assert.EqualValues(t, 0, deferred.callCount())
}
