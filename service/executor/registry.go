package executor

import (
	"sync"

	"github.com/toolgate/toolgate/model/types"
	"github.com/viant/scy"
)

// Scope is the minimal context a freshly constructed tool instance receives.
// It deliberately carries no live session objects; tools that need durable
// credentials resolve them through the secrets service.
type Scope struct {
	UserID    string
	AgentName string
	Secrets   *scy.Service
}

// Factory constructs a fresh tool instance bound to the supplied scope.
type Factory func(scope *Scope) (types.Tool, error)

// Registry is the restricted set of tools eligible for post-approval
// execution. It is distinct from the live registry used inside the agent
// loop: only explicitly registered factories appear here, and names known to
// be session-bound are recorded as unsupported so that lookups fail with a
// structural error instead of falling through to "not registered".
type Registry struct {
	mux         sync.RWMutex
	factories   map[string]Factory
	unsupported map[string]string
}

// NewRegistry creates an empty restricted registry.
func NewRegistry() *Registry {
	return &Registry{
		factories:   make(map[string]Factory),
		unsupported: make(map[string]string),
	}
}

// Register adds a factory for a tool name.
func (r *Registry) Register(name string, factory Factory) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.factories[name] = factory
	delete(r.unsupported, name)
}

// RegisterUnsupported marks a tool name as structurally excluded with a
// human-readable reason.
func (r *Registry) RegisterUnsupported(name, reason string) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.unsupported[name] = reason
	delete(r.factories, name)
}

// Lookup returns the factory for a name, ErrToolNotRegistered when absent or
// an UnsupportedToolError for excluded names.
func (r *Registry) Lookup(name string) (Factory, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	if reason, ok := r.unsupported[name]; ok {
		return nil, &UnsupportedToolError{Tool: name, Reason: reason}
	}
	factory, ok := r.factories[name]
	if !ok {
		return nil, ErrToolNotRegistered
	}
	return factory, nil
}
