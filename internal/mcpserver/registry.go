package mcpserver

import "fmt"

// Registry holds every registered tool's descriptor and handler, in
// insertion order. Built once at startup and read-only thereafter - safe
// for concurrent Lookup and Tools calls (the unified search fan-out calls
// the product clients directly rather than through the registry, but its
// tool is listed in the same registry for tools/list).
type Registry struct {
	order     []string
	handlers  map[string]ToolHandler
	descriptors map[string]ToolDescriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers:    map[string]ToolHandler{},
		descriptors: map[string]ToolDescriptor{},
	}
}

// Register adds a tool under descriptor.Name. Panics on a duplicate name -
// this is a startup-time wiring bug, not a runtime condition.
func (r *Registry) Register(descriptor ToolDescriptor, handler ToolHandler) {
	if _, exists := r.handlers[descriptor.Name]; exists {
		panic(fmt.Sprintf("mcpserver: duplicate tool registration %q", descriptor.Name))
	}
	r.order = append(r.order, descriptor.Name)
	r.handlers[descriptor.Name] = handler
	r.descriptors[descriptor.Name] = descriptor
}

// Tools returns every registered descriptor, in registration order.
func (r *Registry) Tools() []ToolDescriptor {
	out := make([]ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.descriptors[name])
	}
	return out
}

// Lookup returns the handler registered under name, and whether it exists.
func (r *Registry) Lookup(name string) (ToolHandler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}
