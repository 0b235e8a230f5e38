package toolgate

import (
	"context"
	"log/slog"
	"time"

	"github.com/viant/scy"

	"github.com/toolgate/toolgate/extension"
	"github.com/toolgate/toolgate/model/action"
	"github.com/toolgate/toolgate/model/types"
	"github.com/toolgate/toolgate/policy"
	"github.com/toolgate/toolgate/service/approval"
	"github.com/toolgate/toolgate/service/audit"
	"github.com/toolgate/toolgate/service/dao"
	"github.com/toolgate/toolgate/service/dao/store"
	"github.com/toolgate/toolgate/service/executor"
	"github.com/toolgate/toolgate/service/intercept"
	"github.com/toolgate/toolgate/service/notify"
	texec "github.com/toolgate/toolgate/service/tool/exec"
	tstorage "github.com/toolgate/toolgate/service/tool/storage"
	ttasks "github.com/toolgate/toolgate/service/tool/tasks"
)

// Service is the high level façade wiring the policy resolver, tool
// interceptor, pending action queue, audit log and post-approval executor
// together. Host applications usually create one per agent runtime.
type Service struct {
	config      *Config
	logger      *slog.Logger
	table       policy.Table
	preferences dao.Service[string, policy.UserPreference]
	actions     dao.Conditional[string, action.Pending]
	entries     dao.Service[string, audit.Entry]
	notifier    notify.Notifier
	secrets     *scy.Service
	extraTools  []types.Tool
	unsupported map[string]string
	noBuiltins  bool

	tools    *extension.Registry
	restrict *executor.Registry
	resolver *policy.Resolver
	auditor  *audit.Logger
	runner   *executor.Service
	queue    approval.Service
	gate     *intercept.Interceptor
	sweeper  *approval.Sweeper
}

// New creates a fully wired gate. Every collaborator can be swapped via
// options; anything left unset falls back to an in-memory default.
func New(options ...Option) *Service {
	ret := &Service{unsupported: map[string]string{}}
	ret.init(options)
	return ret
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()

	s.auditor = audit.New(s.entries,
		audit.WithPreviewLimit(s.config.Audit.PreviewLimit),
		audit.WithLogger(s.logger))
	s.resolver = policy.NewResolver(s.table, s.preferences,
		policy.WithCacheTTL(time.Duration(s.config.Policy.PreferenceCacheTTL)),
		policy.WithLogger(s.logger))

	s.tools = extension.NewRegistry()
	s.restrict = executor.NewRegistry()
	if !s.noBuiltins {
		s.registerBuiltins()
	}
	for _, tool := range s.extraTools {
		s.RegisterTool(tool)
	}
	for name, reason := range s.unsupported {
		s.restrict.RegisterUnsupported(name, reason)
	}

	s.runner = executor.New(s.restrict,
		executor.WithTimeout(time.Duration(s.config.Executor.Timeout)),
		executor.WithSecrets(s.secrets))
	s.queue = approval.New(s.actions, s.runner, s.auditor,
		approval.WithTTL(time.Duration(s.config.Approval.TTL)),
		approval.WithNotifier(s.notifier),
		approval.WithLogger(s.logger),
		approval.WithPreviewLimit(s.config.Audit.PreviewLimit))
	s.gate = intercept.New(s.resolver, s.tools, s.queue, s.auditor,
		intercept.WithTTL(time.Duration(s.config.Approval.TTL)))
	s.sweeper = approval.NewSweeper(s.queue, time.Duration(s.config.Approval.SweepInterval), s.logger)
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.table == nil {
		s.table = policy.DefaultTable()
	}
	if s.preferences == nil {
		s.preferences = store.NewMemoryStore[string, policy.UserPreference](func(p *policy.UserPreference) string {
			return p.ID
		})
	}
	if s.actions == nil {
		s.actions = store.NewMemoryStore[string, action.Pending](func(a *action.Pending) string {
			return a.ID
		})
	}
	if s.entries == nil {
		s.entries = store.NewMemoryStore[string, audit.Entry](func(e *audit.Entry) string {
			return e.ID
		})
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
}

// registerBuiltins wires the stock tool set: task-list helpers, file storage
// and command execution. Replies into user conversations are structurally
// excluded from post-approval replay.
func (s *Service) registerBuiltins() {
	tasks := ttasks.NewStore()
	s.RegisterTool(ttasks.NewGet(tasks))
	s.RegisterTool(ttasks.NewAdd(tasks))
	s.RegisterTool(tstorage.NewRead())
	s.RegisterTool(tstorage.NewWrite())
	s.RegisterTool(tstorage.NewDelete())
	s.RegisterTool(texec.New())
	s.restrict.RegisterUnsupported("conversation_reply",
		"conversation replies are bound to the originating session and cannot be replayed after approval")
}

// RegisterTool makes a tool available both on the auto-approve path and for
// post-approval execution. The same instance serves both paths, so tools
// registered this way should be safe for concurrent use; use
// RegisterRestrictedTool when execution needs a per-scope instance.
func (s *Service) RegisterTool(tool types.Tool) {
	s.tools.Register(tool)
	s.restrict.Register(tool.Definition().Name, func(scope *executor.Scope) (types.Tool, error) {
		return tool, nil
	})
}

// RegisterRestrictedTool registers a factory used only for post-approval
// execution. The tool is not exposed on the auto-approve path.
func (s *Service) RegisterRestrictedTool(name string, factory executor.Factory) {
	s.restrict.Register(name, factory)
}

// Interceptor returns the tool invocation gate.
func (s *Service) Interceptor() *intercept.Interceptor {
	return s.gate
}

// Approvals returns the pending action queue.
func (s *Service) Approvals() approval.Service {
	return s.queue
}

// Audit returns the audit logger.
func (s *Service) Audit() *audit.Logger {
	return s.auditor
}

// Resolver returns the policy resolver.
func (s *Service) Resolver() *policy.Resolver {
	return s.resolver
}

// Tools returns the live tool registry.
func (s *Service) Tools() *extension.Registry {
	return s.tools
}

// Start launches the background expiry sweeper. It returns immediately; the
// sweeper runs until ctx is cancelled or Shutdown is called.
func (s *Service) Start(ctx context.Context) error {
	go func() {
		if err := s.sweeper.Start(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("sweeper stopped", "error", err)
		}
	}()
	return nil
}

// Shutdown stops background workers.
func (s *Service) Shutdown() {
	s.sweeper.Shutdown()
}
