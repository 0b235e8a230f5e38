// Package tasks provides a small per-user task list used by scheduled agent
// runs. Reading is auto-approved; adding entries is user-configurable.
package tasks

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/toolgate/toolgate/internal/clock"
	"github.com/toolgate/toolgate/internal/idgen"
	"github.com/toolgate/toolgate/model/types"
	"github.com/toolgate/toolgate/service/dao"
	"github.com/toolgate/toolgate/service/dao/store"
)

const (
	GetName = "get_tasks"
	AddName = "add_task"
)

// Task is one task-list entry.
type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
}

func taskKey(t *Task) string { return t.ID }

// NewStore creates the backing task store shared by both tools.
func NewStore() dao.Service[string, Task] {
	return store.NewMemoryStore[string, Task](taskKey)
}

// GetArgs are the get_tasks arguments.
type GetArgs struct {
	UserID string `json:"userId"`
}

// AddArgs are the add_task arguments.
type AddArgs struct {
	UserID string `json:"userId"`
	Title  string `json:"title"`
}

// GetTool lists a user's tasks.
type GetTool struct {
	tasks dao.Service[string, Task]
}

// NewGet creates the get tool over a shared store.
func NewGet(tasks dao.Service[string, Task]) *GetTool {
	return &GetTool{tasks: tasks}
}

func (t *GetTool) Definition() types.Definition {
	return types.Definition{
		Name:        GetName,
		Description: "Returns the user's task list.",
		Args:        reflect.TypeOf(&GetArgs{}),
	}
}

func (t *GetTool) Execute(ctx context.Context, raw map[string]interface{}) (interface{}, error) {
	args := &GetArgs{}
	if err := types.DecodeArgs(raw, args); err != nil {
		return nil, err
	}
	all, err := t.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*Task, 0, len(all))
	for _, task := range all {
		if args.UserID == "" || task.UserID == args.UserID {
			matched = append(matched, task)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	return matched, nil
}

// AddTool appends a task.
type AddTool struct {
	tasks dao.Service[string, Task]
}

// NewAdd creates the add tool over a shared store.
func NewAdd(tasks dao.Service[string, Task]) *AddTool {
	return &AddTool{tasks: tasks}
}

func (t *AddTool) Definition() types.Definition {
	return types.Definition{
		Name:        AddName,
		Description: "Adds a task to the user's task list.",
		Args:        reflect.TypeOf(&AddArgs{}),
	}
}

func (t *AddTool) Execute(ctx context.Context, raw map[string]interface{}) (interface{}, error) {
	args := &AddArgs{}
	if err := types.DecodeArgs(raw, args); err != nil {
		return nil, err
	}
	if args.Title == "" {
		return nil, fmt.Errorf("title cannot be empty")
	}
	task := &Task{
		ID:        idgen.New(),
		UserID:    args.UserID,
		Title:     args.Title,
		CreatedAt: clock.Now(),
	}
	if err := t.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

var (
	_ types.Tool = (*GetTool)(nil)
	_ types.Tool = (*AddTool)(nil)
)
