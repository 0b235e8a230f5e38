package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/toolgate/toolgate/internal/clock"
	"github.com/toolgate/toolgate/internal/idgen"
	"github.com/toolgate/toolgate/model/action"
	"github.com/toolgate/toolgate/policy"
	"github.com/toolgate/toolgate/service/audit"
	"github.com/toolgate/toolgate/service/dao"
	"github.com/toolgate/toolgate/service/notify"
	"github.com/toolgate/toolgate/tracing"
	"github.com/viant/toolbox"
)

// Runner executes an approved tool outside the originating session. It is
// satisfied by the post-approval executor service.
type Runner interface {
	Execute(ctx context.Context, toolName string, args map[string]interface{}, userID, agentName string) (interface{}, error)
}

type service struct {
	actions      dao.Conditional[string, action.Pending]
	runner       Runner
	auditor      *audit.Logger
	notifier     notify.Notifier
	logger       *slog.Logger
	ttl          time.Duration
	previewLimit int
}

// Option customises the queue service.
type Option func(*service)

// WithNotifier sets the outbound notification capability.
func WithNotifier(notifier notify.Notifier) Option {
	return func(s *service) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// WithTTL overrides the default time a queued action remains approvable.
func WithTTL(ttl time.Duration) Option {
	return func(s *service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the internal logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) { s.logger = logger }
}

// WithPreviewLimit overrides the cap applied to stored tool error messages.
func WithPreviewLimit(limit int) Option {
	return func(s *service) {
		if limit > 0 {
			s.previewLimit = limit
		}
	}
}

// New creates the pending-action queue over a conditional store. All state
// transitions re-check the pending status at the moment of the write, so the
// service is safe to run as multiple replicas sharing one store.
func New(actions dao.Conditional[string, action.Pending], runner Runner, auditor *audit.Logger, options ...Option) Service {
	ret := &service{
		actions:      actions,
		runner:       runner,
		auditor:      auditor,
		notifier:     notify.Nop{},
		logger:       slog.Default(),
		ttl:          DefaultTTL,
		previewLimit: audit.DefaultPreviewLimit,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *service) Enqueue(ctx context.Context, request *Request) (*action.Pending, error) {
	if request == nil || request.UserID == "" || request.Tool == "" {
		return nil, fmt.Errorf("approval: invalid enqueue request")
	}
	ttl := request.TTL
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := clock.Now()
	pending := &action.Pending{
		ID:        idgen.New(),
		UserID:    request.UserID,
		Tool:      request.Tool,
		Args:      request.Args,
		Status:    action.StatusPending,
		Tier:      request.Tier,
		Context:   request.Context,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.actions.Save(ctx, pending); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}
	s.notifier.Notify(ctx, pending.UserID, notify.KindActionQueued, map[string]interface{}{
		"actionId": pending.ID,
		"tool":     pending.Tool,
	})
	return pending, nil
}

func (s *service) Get(ctx context.Context, id, userID string) (*action.Pending, error) {
	return s.owned(ctx, id, userID)
}

func (s *service) List(ctx context.Context, userID string, options ...ListOption) ([]*action.Pending, error) {
	filter := &listFilter{}
	for _, option := range options {
		option(filter)
	}
	all, err := s.actions.List(ctx, dao.NewParameter("UserID", userID))
	if err != nil {
		return nil, err
	}
	matched := make([]*action.Pending, 0, len(all))
	for _, candidate := range all {
		if candidate.UserID != userID {
			continue
		}
		if filter.status != "" && candidate.Status != filter.status {
			continue
		}
		if filter.tool != "" && candidate.Tool != filter.tool {
			continue
		}
		matched = append(matched, candidate)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if filter.limit > 0 && filter.limit < len(matched) {
		matched = matched[:filter.limit]
	}
	return matched, nil
}

func (s *service) Approve(ctx context.Context, id, userID string) (*action.Pending, error) {
	ctx, span := tracing.StartSpan(ctx, "approval.Approve", "INTERNAL")
	pending, err := s.approve(ctx, id, userID)
	tracing.EndSpan(span, err)
	return pending, err
}

func (s *service) approve(ctx context.Context, id, userID string) (*action.Pending, error) {
	pending, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	now := clock.Now()
	if err := s.transition(ctx, id, now, action.StatusApproved, ""); err != nil {
		return nil, err
	}

	result, execErr := s.runner.Execute(ctx, pending.Tool, pending.Args, pending.UserID, pending.Context.AgentName)

	outcome := &action.ExecutionResult{
		Success:     execErr == nil,
		Preview:     s.preview(result),
		CompletedAt: clock.Now(),
	}
	if execErr != nil {
		outcome.Error = s.cap(execErr.Error())
	}
	if _, err := s.actions.Mutate(ctx, id, func(p *action.Pending) bool {
		if p.Status != action.StatusApproved {
			return false
		}
		resolved := clock.Now()
		p.Status = action.StatusExecuted
		p.UpdatedAt = resolved
		p.ResolvedAt = &resolved
		p.Execution = outcome
		return true
	}); err != nil {
		s.logger.Error("failed to record execution outcome", "action", id, "error", err)
	}

	executionStatus := audit.ExecSuccess
	if execErr != nil {
		executionStatus = audit.ExecError
	}
	s.auditor.LogAction(ctx, audit.Record{
		UserID:          pending.UserID,
		Tool:            pending.Tool,
		Args:            pending.Args,
		Tier:            policy.Tier(pending.Tier),
		ApprovalStatus:  audit.StatusUserApproved,
		ExecutionStatus: executionStatus,
		Result:          result,
		Err:             execErr,
		PendingActionID: pending.ID,
		SessionID:       pending.Context.SessionID,
		AgentName:       pending.Context.AgentName,
	})
	s.notifier.Notify(ctx, pending.UserID, notify.KindActionResolved, map[string]interface{}{
		"actionId": pending.ID,
		"tool":     pending.Tool,
		"status":   string(action.StatusExecuted),
		"success":  execErr == nil,
	})
	return s.owned(ctx, id, userID)
}

func (s *service) Reject(ctx context.Context, id, userID, reason string) (*action.Pending, error) {
	pending, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	now := clock.Now()
	if err := s.transition(ctx, id, now, action.StatusRejected, reason); err != nil {
		return nil, err
	}
	s.auditor.LogAction(ctx, audit.Record{
		UserID:          pending.UserID,
		Tool:            pending.Tool,
		Args:            pending.Args,
		Tier:            policy.Tier(pending.Tier),
		ApprovalStatus:  audit.StatusUserRejected,
		ExecutionStatus: audit.ExecSkipped,
		PendingActionID: pending.ID,
		SessionID:       pending.Context.SessionID,
		AgentName:       pending.Context.AgentName,
	})
	s.notifier.Notify(ctx, pending.UserID, notify.KindActionResolved, map[string]interface{}{
		"actionId": pending.ID,
		"tool":     pending.Tool,
		"status":   string(action.StatusRejected),
		"reason":   reason,
	})
	return s.owned(ctx, id, userID)
}

func (s *service) ExpireStale(ctx context.Context) (int, error) {
	stale, err := s.actions.List(ctx, dao.NewParameter("Status", string(action.StatusPending)))
	if err != nil {
		return 0, err
	}
	now := clock.Now()
	count := 0
	for _, candidate := range stale {
		if candidate.Status != action.StatusPending || !candidate.Expired(now) {
			continue
		}
		changed, err := s.expireOne(ctx, candidate)
		if err != nil {
			// Individual failures never abort the sweep.
			s.logger.Warn("failed to expire action", "action", candidate.ID, "error", err)
			continue
		}
		if changed {
			count++
		}
	}
	return count, nil
}

func (s *service) PendingCount(ctx context.Context, userID string) (int, error) {
	pending, err := s.List(ctx, userID, WithStatus(action.StatusPending))
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

// transition performs the guarded pending -> target write. An action past
// its deadline transitions to expired instead and the caller observes
// ErrActionExpired; an already resolved action yields ErrActionNotPending.
func (s *service) transition(ctx context.Context, id string, now time.Time, target action.Status, reason string) error {
	var failure error
	var expired *action.Pending
	changed, err := s.actions.Mutate(ctx, id, func(p *action.Pending) bool {
		if p.Status != action.StatusPending {
			failure = ErrActionNotPending
			return false
		}
		if p.Expired(now) {
			p.Status = action.StatusExpired
			p.UpdatedAt = now
			p.ResolvedAt = &now
			failure = ErrActionExpired
			snapshot := *p
			expired = &snapshot
			return true
		}
		p.Status = target
		p.UpdatedAt = now
		if target == action.StatusRejected {
			p.Reason = reason
			p.ResolvedAt = &now
		}
		return true
	})
	if err != nil {
		return err
	}
	if failure != nil {
		if expired != nil {
			s.recordExpiry(ctx, expired)
		}
		return failure
	}
	if !changed {
		return ErrActionNotPending
	}
	return nil
}

func (s *service) expireOne(ctx context.Context, candidate *action.Pending) (bool, error) {
	var expired *action.Pending
	now := clock.Now()
	changed, err := s.actions.Mutate(ctx, candidate.ID, func(p *action.Pending) bool {
		if p.Status != action.StatusPending || !p.Expired(now) {
			return false
		}
		p.Status = action.StatusExpired
		p.UpdatedAt = now
		p.ResolvedAt = &now
		snapshot := *p
		expired = &snapshot
		return true
	})
	if err != nil || !changed {
		return false, err
	}
	s.recordExpiry(ctx, expired)
	return true, nil
}

func (s *service) recordExpiry(ctx context.Context, expired *action.Pending) {
	s.auditor.LogAction(ctx, audit.Record{
		UserID:          expired.UserID,
		Tool:            expired.Tool,
		Args:            expired.Args,
		Tier:            policy.Tier(expired.Tier),
		ApprovalStatus:  audit.StatusExpired,
		ExecutionStatus: audit.ExecSkipped,
		PendingActionID: expired.ID,
		SessionID:       expired.Context.SessionID,
		AgentName:       expired.Context.AgentName,
	})
	s.notifier.Notify(ctx, expired.UserID, notify.KindActionExpired, map[string]interface{}{
		"actionId": expired.ID,
		"tool":     expired.Tool,
	})
}

func (s *service) owned(ctx context.Context, id, userID string) (*action.Pending, error) {
	if id == "" || userID == "" {
		return nil, ErrActionNotFound
	}
	pending, err := s.actions.Load(ctx, id)
	if err != nil && !errors.Is(err, dao.ErrNotFound) {
		return nil, err
	}
	if pending == nil || pending.UserID != userID {
		return nil, ErrActionNotFound
	}
	return pending, nil
}

func (s *service) preview(result interface{}) string {
	if result == nil {
		return ""
	}
	text, err := toolbox.AsJSONText(result)
	if err != nil {
		text = toolbox.AsString(result)
	}
	return s.cap(text)
}

func (s *service) cap(text string) string {
	if len(text) <= s.previewLimit {
		return text
	}
	// Back off to a rune boundary so the stored error stays valid UTF-8.
	cut := s.previewLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

var _ Service = (*service)(nil)
