package extension

import (
	"sync"

	"github.com/toolgate/toolgate/model/types"
	"github.com/viant/x"
)

// Registry holds the live tools available to the agent loop. It is distinct
// from the restricted post-approval registry: a tool present here is only
// reachable through the interceptor, never invoked directly.
type Registry struct {
	types *Types
	tools map[string]types.Tool
	mux   sync.RWMutex
}

// Types returns the argument type registry.
func (r *Registry) Types() *Types {
	return r.types
}

// Lookup returns a tool by name, or nil when absent.
func (r *Registry) Lookup(name string) types.Tool {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.tools[name]
}

// Register adds a tool and records its argument type when declared.
func (r *Registry) Register(tool types.Tool) {
	r.mux.Lock()
	defer r.mux.Unlock()
	definition := tool.Definition()
	if definition.Args != nil {
		r.types.Register(x.NewType(definition.Args, x.WithName(definition.Name)))
	}
	r.tools[definition.Name] = tool
}

// Names returns the registered tool names.
func (r *Registry) Names() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// NewRegistry creates a new tool registry.
func NewRegistry(goTypes ...*x.Type) *Registry {
	ret := &Registry{
		types: NewTypes(),
		tools: make(map[string]types.Tool),
	}
	for _, t := range goTypes {
		if t != nil {
			ret.types.Register(t)
		}
	}
	return ret
}
