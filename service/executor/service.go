package executor

import (
	"context"
	"time"

	"github.com/toolgate/toolgate/tracing"
	"github.com/viant/scy"
)

// DefaultTimeout bounds a single post-approval execution.
const DefaultTimeout = time.Minute

// Service executes approved tools detached from their originating session.
type Service struct {
	registry *Registry
	secrets  *scy.Service
	timeout  time.Duration
}

// Option customises the executor service.
type Option func(*Service)

// WithTimeout overrides the per-execution timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithSecrets sets the secrets service handed to tool factories for durable
// credential resolution.
func WithSecrets(secrets *scy.Service) Option {
	return func(s *Service) { s.secrets = secrets }
}

// New creates an executor over the supplied restricted registry.
func New(registry *Registry, options ...Option) *Service {
	ret := &Service{
		registry: registry,
		secrets:  scy.New(),
		timeout:  DefaultTimeout,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Registry exposes the restricted registry for wiring.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Execute looks the tool up, builds a fresh instance scoped to the user and
// runs it. The supplied ctx carries cancellation of the approval surface
// only for values; execution runs under its own timeout so that it is not
// bound to the lifetime of any earlier request. Failures inside the tool are
// wrapped in *ExecutionError with the cause attached.
func (s *Service) Execute(ctx context.Context, toolName string, args map[string]interface{}, userID, agentName string) (result interface{}, err error) {
	factory, err := s.registry.Lookup(toolName)
	if err != nil {
		return nil, err
	}

	scope := &Scope{UserID: userID, AgentName: agentName, Secrets: s.secrets}
	tool, err := factory(scope)
	if err != nil {
		return nil, &ExecutionError{Tool: toolName, Cause: err}
	}

	runCtx, span := tracing.StartSpan(context.WithoutCancel(ctx), "executor.Execute", "INTERNAL")
	span.WithAttributes(map[string]string{"tool": toolName, "user": userID})
	defer func() { tracing.EndSpan(span, err) }()

	runCtx, cancel := context.WithTimeout(runCtx, s.timeout)
	defer cancel()

	result, err = tool.Execute(runCtx, args)
	if err != nil {
		return nil, &ExecutionError{Tool: toolName, Cause: err}
	}
	return result, nil
}
