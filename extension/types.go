package extension

import (
	"reflect"

	"github.com/viant/x"
)

// Types registers the Go types of tool argument structs so that stored
// argument payloads can be decoded back into their typed form at
// post-approval time.
type Types struct {
	x.Registry
}

// Register adds an argument type to the registry.
func (t *Types) Register(dataType *x.Type) {
	t.Registry.Register(dataType)
}

// Lookup returns the argument type registered under a tool name, or nil.
func (t *Types) Lookup(name string) reflect.Type {
	entry := t.Registry.Lookup(name)
	if entry == nil {
		return nil
	}
	return entry.Type
}

// NewTypes creates a new type registry.
func NewTypes(options ...x.RegistryOption) *Types {
	return &Types{Registry: *x.NewRegistry(options...)}
}
