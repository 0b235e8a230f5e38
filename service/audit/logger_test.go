package audit_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/toolgate/toolgate/internal/clock"
	"github.com/toolgate/toolgate/policy"
	"github.com/toolgate/toolgate/service/audit"
	"github.com/toolgate/toolgate/service/dao"
	"github.com/toolgate/toolgate/service/dao/store"
)

func newEntryStore() dao.Service[string, audit.Entry] {
	return store.NewMemoryStore[string, audit.Entry](func(e *audit.Entry) string { return e.ID })
}

func TestHashArgs(t *testing.T) {
	args := map[string]interface{}{"url": "/tmp/x", "payload": "hello"}
	again := map[string]interface{}{"payload": "hello", "url": "/tmp/x"}

	hash := audit.HashArgs(args)
	assert.NotEmpty(t, hash)
	assert.Equal(t, hash, audit.HashArgs(again), "hash must not depend on key order")
	assert.NotEqual(t, hash, audit.HashArgs(map[string]interface{}{"url": "/tmp/y"}))

	assert.Empty(t, audit.HashArgs(nil))
	assert.Empty(t, audit.HashArgs(map[string]interface{}{}))

	// Raw argument values never appear in the hash.
	assert.NotContains(t, hash, "hello")
}

func TestLogAction(t *testing.T) {
	ctx := context.Background()
	entries := newEntryStore()
	logger := audit.New(entries)

	id := logger.LogAction(ctx, audit.Record{
		UserID:         "u1",
		Tool:           "get_tasks",
		Args:           map[string]interface{}{"userId": "u1"},
		Tier:           policy.TierAutoApprove,
		ApprovalStatus: audit.StatusAutoApproved,

		ExecutionStatus: audit.ExecSuccess,
		Result:          map[string]interface{}{"tasks": []string{"a", "b"}},
		SessionID:       "s1",
		AgentName:       "scheduler",
	})
	assert.NotEmpty(t, id)

	entry, err := entries.Load(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, audit.StatusAutoApproved, entry.ApprovalStatus)
	assert.Equal(t, audit.ExecSuccess, entry.ExecutionStatus)
	assert.NotEmpty(t, entry.ArgsHash)
	assert.NotContains(t, entry.ArgsHash, "u1")
	assert.Contains(t, entry.ResultPreview, "tasks")
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestLogActionCapsPreview(t *testing.T) {
	ctx := context.Background()
	entries := newEntryStore()
	logger := audit.New(entries, audit.WithPreviewLimit(16))

	id := logger.LogAction(ctx, audit.Record{
		UserID:          "u1",
		Tool:            "file_read",
		ApprovalStatus:  audit.StatusAutoApproved,
		ExecutionStatus: audit.ExecError,
		Result:          strings.Repeat("x", 1000),
		Err:             errors.New(strings.Repeat("boom ", 100)),
	})
	entry, _ := entries.Load(ctx, id)
	assert.LessOrEqual(t, len(entry.ResultPreview), 16)
	assert.LessOrEqual(t, len(entry.ErrorMessage), 16)
}

func TestLogActionPreviewStaysValidUTF8(t *testing.T) {
	ctx := context.Background()
	entries := newEntryStore()
	logger := audit.New(entries, audit.WithPreviewLimit(10))

	// Each snowman is 3 bytes, so a 10-byte cut lands mid-rune.
	id := logger.LogAction(ctx, audit.Record{
		UserID:          "u1",
		Tool:            "file_read",
		ApprovalStatus:  audit.StatusAutoApproved,
		ExecutionStatus: audit.ExecError,
		Result:          strings.Repeat("☃", 8),
		Err:             errors.New(strings.Repeat("☃", 8)),
	})
	entry, _ := entries.Load(ctx, id)
	assert.True(t, utf8.ValidString(entry.ResultPreview))
	assert.True(t, utf8.ValidString(entry.ErrorMessage))
	assert.LessOrEqual(t, len(entry.ResultPreview), 10)
	assert.LessOrEqual(t, len(entry.ErrorMessage), 10)
}

type failingEntryStore struct {
	dao.Service[string, audit.Entry]
}

func (f *failingEntryStore) Save(context.Context, *audit.Entry) error {
	return errors.New("disk full")
}

func TestLogActionNeverFails(t *testing.T) {
	logger := audit.New(&failingEntryStore{Service: newEntryStore()})
	id := logger.LogAction(context.Background(), audit.Record{
		UserID:         "u1",
		Tool:           "get_tasks",
		ApprovalStatus: audit.StatusAutoApproved,
	})
	assert.Empty(t, id, "a failed write yields an empty id, not an error")
}

func TestListAndCount(t *testing.T) {
	ctx := context.Background()
	entries := newEntryStore()
	logger := audit.New(entries)

	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	defer func() { clock.NowFunc = time.Now }()

	for i, record := range []audit.Record{
		{UserID: "u1", Tool: "get_tasks", ApprovalStatus: audit.StatusAutoApproved},
		{UserID: "u1", Tool: "file_write", ApprovalStatus: audit.StatusUserApproved},
		{UserID: "u1", Tool: "file_write", ApprovalStatus: audit.StatusUserRejected},
		{UserID: "u2", Tool: "get_tasks", ApprovalStatus: audit.StatusAutoApproved},
	} {
		at := base.Add(time.Duration(i) * time.Minute)
		clock.NowFunc = func() time.Time { return at }
		logger.LogAction(ctx, record)
	}

	// Ownership scoped, newest first.
	listed, err := logger.List(ctx, "u1")
	assert.NoError(t, err)
	assert.Len(t, listed, 3)
	for i := 1; i < len(listed); i++ {
		assert.True(t, listed[i-1].CreatedAt.After(listed[i].CreatedAt))
	}

	// Filters.
	listed, err = logger.List(ctx, "u1", audit.WithTool("file_write"))
	assert.NoError(t, err)
	assert.Len(t, listed, 2)

	listed, err = logger.List(ctx, "u1", audit.WithApprovalStatus(audit.StatusUserRejected))
	assert.NoError(t, err)
	assert.Len(t, listed, 1)

	// Pagination.
	listed, err = logger.List(ctx, "u1", audit.WithPage(1, 1))
	assert.NoError(t, err)
	assert.Len(t, listed, 1)

	listed, err = logger.List(ctx, "u1", audit.WithPage(10, 5))
	assert.NoError(t, err)
	assert.Empty(t, listed)

	// Count ignores pagination.
	count, err := logger.Count(ctx, "u1", audit.WithPage(1, 1))
	assert.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = logger.Count(ctx, "u2")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}
