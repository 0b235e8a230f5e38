package types

import (
	"context"
	"reflect"
)

// Tool is the capability boundary the gate mediates. Implementations wrap a
// single side-effecting operation (sending a message, writing a file) behind
// a name and an argument map; the gate makes no assumption about a tool's
// internals beyond this contract.
type Tool interface {
	// Definition describes the tool for registration and argument decoding.
	Definition() Definition

	// Execute runs the tool with the given arguments.
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// Definition describes a registered tool.
type Definition struct {
	Name        string
	Description string

	// Args is the tool's typed argument struct, used to decode the opaque
	// argument map before execution. May be nil for tools that consume the
	// raw map.
	Args reflect.Type
}
