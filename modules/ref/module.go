package ref

import (
	"context"
	"regexp"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/weavego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Ref records `#name` as a named element reference of the component and
// binds name in the element's scope to a description of the element.
// Elements produced by a structural directive come and go, so references
// are not allowed inside one.
type Ref struct {
	mc   *registry.Context
	name string
}

// New creates the reference.
func New(mc *registry.Context) (registry.StaticModule, error) {
	return &Ref{mc: mc, name: mc.Match[1]}, nil
}

// Process registers the reference.
func (r *Ref) Process(ctx context.Context) (bool, error) {
	if r.mc.Host != nil {
		r.mc.Host.SetRef(r.name, r.mc.Node)
	}
	r.mc.Scope.Set(r.name, cty.ObjectVal(map[string]cty.Value{
		"tag":  cty.StringVal(r.mc.Node.Data),
		"name": cty.StringVal(r.name),
	}), false)
	return false, nil
}

// Update never changes anything.
func (r *Ref) Update(ctx context.Context) (bool, error) {
	return false, nil
}

// Cleanup drops the reference.
func (r *Ref) Cleanup() {
	if r.mc.Host != nil {
		r.mc.Host.SetRef(r.name, nil)
	}
}

// Register registers the descriptor with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.StaticDescriptor{
		Name:                  "ref",
		Pattern:               regexp.MustCompile(`^#([a-z_][a-z0-9_-]*)$`),
		Access:                registry.Write,
		ForbiddenInStructural: true,
		New:                   New,
	})
}
