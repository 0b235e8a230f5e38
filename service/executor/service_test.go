package executor_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolgate/toolgate/model/types"
	"github.com/toolgate/toolgate/service/executor"
)

type echoTool struct {
	name  string
	scope *executor.Scope
	err   error
}

func (t *echoTool) Definition() types.Definition {
	return types.Definition{Name: t.name, Args: reflect.TypeOf(&struct{}{})}
}

func (t *echoTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	if t.err != nil {
		return nil, t.err
	}
	return map[string]interface{}{"user": t.scope.UserID, "args": args}, nil
}

func TestExecute(t *testing.T) {
	registry := executor.NewRegistry()
	registry.Register("file_write", func(scope *executor.Scope) (types.Tool, error) {
		return &echoTool{name: "file_write", scope: scope}, nil
	})
	svc := executor.New(registry)

	result, err := svc.Execute(context.Background(), "file_write",
		map[string]interface{}{"url": "/tmp/x"}, "u1", "agent")
	require.NoError(t, err)
	body, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "u1", body["user"], "the tool instance must be scoped to the owning user")
}

func TestExecuteNotRegistered(t *testing.T) {
	svc := executor.New(executor.NewRegistry())
	_, err := svc.Execute(context.Background(), "unknown", nil, "u1", "agent")
	assert.ErrorIs(t, err, executor.ErrToolNotRegistered)
}

func TestExecuteUnsupported(t *testing.T) {
	registry := executor.NewRegistry()
	registry.RegisterUnsupported("conversation_reply", "session bound")
	svc := executor.New(registry)

	_, err := svc.Execute(context.Background(), "conversation_reply", nil, "u1", "agent")
	var unsupported *executor.UnsupportedToolError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "conversation_reply", unsupported.Tool)
	assert.Contains(t, unsupported.Reason, "session bound")
}

func TestExecuteWrapsToolFailure(t *testing.T) {
	cause := errors.New("disk full")
	registry := executor.NewRegistry()
	registry.Register("file_write", func(scope *executor.Scope) (types.Tool, error) {
		return &echoTool{name: "file_write", scope: scope, err: cause}, nil
	})
	svc := executor.New(registry)

	_, err := svc.Execute(context.Background(), "file_write", nil, "u1", "agent")
	var execErr *executor.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "file_write", execErr.Tool)
	assert.ErrorIs(t, err, cause, "the cause must stay reachable through Unwrap")
}

func TestExecuteSurvivesCancelledApprovalContext(t *testing.T) {
	registry := executor.NewRegistry()
	registry.Register("file_write", func(scope *executor.Scope) (types.Tool, error) {
		return &echoTool{name: "file_write", scope: scope}, nil
	})
	svc := executor.New(registry)

	// Execution is detached from the approval surface's lifetime: an already
	// cancelled caller context must not abort the tool.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Execute(ctx, "file_write", nil, "u1", "agent")
	assert.NoError(t, err)
}

func TestRegisterOverridesUnsupported(t *testing.T) {
	registry := executor.NewRegistry()
	registry.RegisterUnsupported("file_write", "temporarily off")
	registry.Register("file_write", func(scope *executor.Scope) (types.Tool, error) {
		return &echoTool{name: "file_write", scope: scope}, nil
	})
	_, err := registry.Lookup("file_write")
	assert.NoError(t, err)
}
