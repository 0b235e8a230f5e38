package audit

import (
	"context"
	"log/slog"
	"sort"
	"unicode/utf8"

	"github.com/toolgate/toolgate/internal/clock"
	"github.com/toolgate/toolgate/internal/idgen"
	"github.com/toolgate/toolgate/policy"
	"github.com/toolgate/toolgate/service/dao"
	"github.com/viant/toolbox"
)

// DefaultPreviewLimit caps the stored rendering of tool results and error
// messages to bound record size.
const DefaultPreviewLimit = 2048

// Record is the input to LogAction. Args and Result are accepted raw; the
// logger hashes the former and renders a capped preview of the latter.
type Record struct {
	UserID          string
	Tool            string
	Args            map[string]interface{}
	Tier            policy.Tier
	ApprovalStatus  Status
	ExecutionStatus ExecStatus
	Result          interface{}
	Err             error
	PendingActionID string
	SessionID       string
	AgentName       string
}

// Logger appends immutable entries to the audit store. Writing is
// best-effort: any storage failure is logged internally and suppressed so
// that auditing can never break the flow it observes.
type Logger struct {
	entries      dao.Service[string, Entry]
	logger       *slog.Logger
	previewLimit int
}

// Option customises a Logger.
type Option func(*Logger)

// WithPreviewLimit overrides the result/error preview cap.
func WithPreviewLimit(limit int) Option {
	return func(l *Logger) {
		if limit > 0 {
			l.previewLimit = limit
		}
	}
}

// WithLogger sets the internal logger used to report suppressed failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Logger) { l.logger = logger }
}

// New creates an audit logger over the supplied append-only store.
func New(entries dao.Service[string, Entry], options ...Option) *Logger {
	ret := &Logger{
		entries:      entries,
		logger:       slog.Default(),
		previewLimit: DefaultPreviewLimit,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// LogAction appends one entry and returns its id. It never returns an error;
// a failed write yields an empty id and an internal log line.
func (l *Logger) LogAction(ctx context.Context, record Record) string {
	entry := &Entry{
		ID:              idgen.New(),
		UserID:          record.UserID,
		Tool:            record.Tool,
		ArgsHash:        HashArgs(record.Args),
		Tier:            record.Tier,
		ApprovalStatus:  record.ApprovalStatus,
		ExecutionStatus: record.ExecutionStatus,
		ResultPreview:   l.preview(record.Result),
		PendingActionID: record.PendingActionID,
		SessionID:       record.SessionID,
		AgentName:       record.AgentName,
		CreatedAt:       clock.Now(),
	}
	if record.Err != nil {
		entry.ErrorMessage = l.cap(record.Err.Error())
	}
	if err := l.entries.Save(ctx, entry); err != nil {
		l.logger.Error("failed to write audit entry",
			"user", record.UserID, "tool", record.Tool, "error", err)
		return ""
	}
	return entry.ID
}

// ListOption narrows List/Count results.
type ListOption func(*listFilter)

type listFilter struct {
	tool           string
	approvalStatus Status
	offset         int
	limit          int
}

// WithTool filters by tool name.
func WithTool(name string) ListOption {
	return func(f *listFilter) { f.tool = name }
}

// WithApprovalStatus filters by approval status.
func WithApprovalStatus(status Status) ListOption {
	return func(f *listFilter) { f.approvalStatus = status }
}

// WithPage applies offset/limit pagination after ordering.
func WithPage(offset, limit int) ListOption {
	return func(f *listFilter) {
		f.offset = offset
		f.limit = limit
	}
}

// List returns the user's entries newest-first. Reads are ownership-scoped;
// entries belonging to other users are never returned.
func (l *Logger) List(ctx context.Context, userID string, options ...ListOption) ([]*Entry, error) {
	filter := &listFilter{}
	for _, option := range options {
		option(filter)
	}
	all, err := l.entries.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*Entry, 0, len(all))
	for _, entry := range all {
		if entry.UserID != userID {
			continue
		}
		if filter.tool != "" && entry.Tool != filter.tool {
			continue
		}
		if filter.approvalStatus != "" && entry.ApprovalStatus != filter.approvalStatus {
			continue
		}
		matched = append(matched, entry)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if filter.offset > 0 {
		if filter.offset >= len(matched) {
			return []*Entry{}, nil
		}
		matched = matched[filter.offset:]
	}
	if filter.limit > 0 && filter.limit < len(matched) {
		matched = matched[:filter.limit]
	}
	return matched, nil
}

// Count returns the number of entries List would match before pagination.
func (l *Logger) Count(ctx context.Context, userID string, options ...ListOption) (int, error) {
	entries, err := l.List(ctx, userID, append(options, WithPage(0, 0))...)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (l *Logger) preview(result interface{}) string {
	if result == nil {
		return ""
	}
	text, err := toolbox.AsJSONText(result)
	if err != nil {
		text = toolbox.AsString(result)
	}
	return l.cap(text)
}

func (l *Logger) cap(text string) string {
	if len(text) <= l.previewLimit {
		return text
	}
	// Back off to a rune boundary so the stored preview stays valid UTF-8.
	cut := l.previewLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
