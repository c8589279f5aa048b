package registry

import (
	"fmt"
	"log/slog"
)

// Registry holds the module descriptors of a single application instance.
type Registry struct {
	static     []*StaticDescriptor
	structural []*StructuralDescriptor
	expression []*ExpressionDescriptor
	names      map[string]Kind
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{names: make(map[string]Kind)}
}

// Register appends a descriptor to the list of its kind. Registration order
// is resolution order. It panics on an invalid or duplicate descriptor.
func (r *Registry) Register(d Descriptor) {
	if err := validate(d); err != nil {
		panic(err.Error())
	}
	name := d.DescriptorName()
	if _, exists := r.names[name]; exists {
		panic(fmt.Sprintf("module with name '%s' already registered", name))
	}
	slog.Debug("Registering module.", "name", name, "kind", d.Kind())
	r.names[name] = d.Kind()

	switch v := d.(type) {
	case *StaticDescriptor:
		r.static = append(r.static, v)
	case *StructuralDescriptor:
		r.structural = append(r.structural, v)
	case *ExpressionDescriptor:
		r.expression = append(r.expression, v)
	}
}

// Load calls Register on every module in order.
func (r *Registry) Load(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Reset removes every registered descriptor.
func (r *Registry) Reset() {
	r.static = nil
	r.structural = nil
	r.expression = nil
	r.names = make(map[string]Kind)
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	return len(r.names)
}

// Names returns the registered descriptor names grouped by kind, in
// registration order.
func (r *Registry) Names() map[Kind][]string {
	out := make(map[Kind][]string)
	for _, d := range r.static {
		out[Static] = append(out[Static], d.Name)
	}
	for _, d := range r.structural {
		out[Structural] = append(out[Structural], d.Name)
	}
	for _, d := range r.expression {
		out[Expression] = append(out[Expression], d.Name)
	}
	return out
}
