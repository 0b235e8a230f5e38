// Package storage provides file tools backed by viant/afs, so local paths
// and cloud URLs behave uniformly. Reading is user-configurable; writing and
// deleting statically require approval.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"reflect"

	"github.com/toolgate/toolgate/model/types"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

const (
	ReadName   = "file_read"
	WriteName  = "file_write"
	DeleteName = "file_delete"
)

// ReadArgs are the file_read arguments.
type ReadArgs struct {
	URL string `json:"url"`
}

// WriteArgs are the file_write arguments.
type WriteArgs struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// DeleteArgs are the file_delete arguments.
type DeleteArgs struct {
	URL string `json:"url"`
}

// ReadTool downloads a file's content.
type ReadTool struct {
	fs afs.Service
}

// NewRead creates the read tool.
func NewRead() *ReadTool {
	return &ReadTool{fs: afs.New()}
}

func (t *ReadTool) Definition() types.Definition {
	return types.Definition{
		Name:        ReadName,
		Description: "Reads the content of a file or object URL.",
		Args:        reflect.TypeOf(&ReadArgs{}),
	}
}

func (t *ReadTool) Execute(ctx context.Context, raw map[string]interface{}) (interface{}, error) {
	args := &ReadArgs{}
	if err := types.DecodeArgs(raw, args); err != nil {
		return nil, err
	}
	if args.URL == "" {
		return nil, fmt.Errorf("url cannot be empty")
	}
	data, err := t.fs.DownloadWithURL(ctx, args.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args.URL, err)
	}
	return map[string]interface{}{"url": args.URL, "content": string(data)}, nil
}

// WriteTool uploads content to a URL.
type WriteTool struct {
	fs afs.Service
}

// NewWrite creates the write tool.
func NewWrite() *WriteTool {
	return &WriteTool{fs: afs.New()}
}

func (t *WriteTool) Definition() types.Definition {
	return types.Definition{
		Name:        WriteName,
		Description: "Writes content to a file or object URL.",
		Args:        reflect.TypeOf(&WriteArgs{}),
	}
}

func (t *WriteTool) Execute(ctx context.Context, raw map[string]interface{}) (interface{}, error) {
	args := &WriteArgs{}
	if err := types.DecodeArgs(raw, args); err != nil {
		return nil, err
	}
	if args.URL == "" {
		return nil, fmt.Errorf("url cannot be empty")
	}
	if err := t.fs.Upload(ctx, args.URL, file.DefaultFileOsMode, bytes.NewReader([]byte(args.Content))); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", args.URL, err)
	}
	return map[string]interface{}{"url": args.URL, "size": len(args.Content)}, nil
}

// DeleteTool removes a file.
type DeleteTool struct {
	fs afs.Service
}

// NewDelete creates the delete tool.
func NewDelete() *DeleteTool {
	return &DeleteTool{fs: afs.New()}
}

func (t *DeleteTool) Definition() types.Definition {
	return types.Definition{
		Name:        DeleteName,
		Description: "Deletes a file or object URL.",
		Args:        reflect.TypeOf(&DeleteArgs{}),
	}
}

func (t *DeleteTool) Execute(ctx context.Context, raw map[string]interface{}) (interface{}, error) {
	args := &DeleteArgs{}
	if err := types.DecodeArgs(raw, args); err != nil {
		return nil, err
	}
	if args.URL == "" {
		return nil, fmt.Errorf("url cannot be empty")
	}
	if err := t.fs.Delete(ctx, args.URL); err != nil {
		return nil, fmt.Errorf("failed to delete %s: %w", args.URL, err)
	}
	return map[string]interface{}{"url": args.URL, "deleted": true}, nil
}

var (
	_ types.Tool = (*ReadTool)(nil)
	_ types.Tool = (*WriteTool)(nil)
	_ types.Tool = (*DeleteTool)(nil)
)
