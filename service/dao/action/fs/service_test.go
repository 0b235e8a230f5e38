package fs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolgate/toolgate/model/action"
	"github.com/toolgate/toolgate/service/dao"
	fs "github.com/toolgate/toolgate/service/dao/action/fs"
)

func newPending(id, userID string, status action.Status) *action.Pending {
	now := time.Now().UTC().Truncate(time.Second)
	return &action.Pending{
		ID:        id,
		UserID:    userID,
		Tool:      "file_write",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestSaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	store, err := fs.New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, newPending("a1", "u1", action.StatusPending)))

	loaded, err := store.Load(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "u1", loaded.UserID)
	assert.Equal(t, action.StatusPending, loaded.Status)

	missing, err := store.Load(ctx, "a2")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.Delete(ctx, "a1"))
	assert.ErrorIs(t, store.Delete(ctx, "a1"), dao.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	store, err := fs.New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, newPending("a1", "u1", action.StatusPending)))
	require.NoError(t, store.Save(ctx, newPending("a2", "u1", action.StatusExecuted)))
	require.NoError(t, store.Save(ctx, newPending("a3", "u2", action.StatusPending)))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := store.List(ctx, dao.NewParameter("Status", string(action.StatusPending)))
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	mine, err := store.List(ctx, dao.NewParameter("UserID", "u1"))
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestMutateGuard(t *testing.T) {
	ctx := context.Background()
	store, err := fs.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, newPending("a1", "u1", action.StatusPending)))

	changed, err := store.Mutate(ctx, "a1", func(p *action.Pending) bool {
		if p.Status != action.StatusPending {
			return false
		}
		p.Status = action.StatusApproved
		return true
	})
	require.NoError(t, err)
	assert.True(t, changed)

	// The guard now fails and the stored record stays untouched.
	changed, err = store.Mutate(ctx, "a1", func(p *action.Pending) bool {
		if p.Status != action.StatusPending {
			return false
		}
		p.Status = action.StatusRejected
		return true
	})
	require.NoError(t, err)
	assert.False(t, changed)

	loaded, err := store.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, action.StatusApproved, loaded.Status)

	_, err = store.Mutate(ctx, "missing", func(*action.Pending) bool { return true })
	assert.ErrorIs(t, err, dao.ErrNotFound)
}
