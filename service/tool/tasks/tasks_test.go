package tasks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolgate/toolgate/service/tool/tasks"
)

func TestAddAndGet(t *testing.T) {
	ctx := context.Background()
	store := tasks.NewStore()
	add := tasks.NewAdd(store)
	get := tasks.NewGet(store)

	for _, title := range []string{"water plants", "file taxes"} {
		_, err := add.Execute(ctx, map[string]interface{}{"userId": "u1", "title": title})
		require.NoError(t, err)
	}
	_, err := add.Execute(ctx, map[string]interface{}{"userId": "u2", "title": "walk dog"})
	require.NoError(t, err)

	result, err := get.Execute(ctx, map[string]interface{}{"userId": "u1"})
	require.NoError(t, err)
	listed, ok := result.([]*tasks.Task)
	require.True(t, ok)
	require.Len(t, listed, 2)
	assert.Equal(t, "water plants", listed[0].Title, "tasks are ordered by creation time")
	for _, task := range listed {
		assert.Equal(t, "u1", task.UserID)
		assert.NotEmpty(t, task.ID)
	}
}

func TestAddRejectsEmptyTitle(t *testing.T) {
	add := tasks.NewAdd(tasks.NewStore())
	_, err := add.Execute(context.Background(), map[string]interface{}{"userId": "u1"})
	assert.Error(t, err)
}
