package let

import (
	"context"
	"regexp"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Let binds `let-name="expr"` in the element's scope, visible to the
// element's other attributes and to its descendants.
type Let struct {
	mc    *registry.Context
	name  string
	value *expr.Compiled
	last  cty.Value
}

// New compiles the bound expression.
func New(mc *registry.Context) (registry.StaticModule, error) {
	value, err := mc.Eval.Compile(mc.Attribute.Value)
	if err != nil {
		return nil, err
	}
	return &Let{mc: mc, name: mc.Match[1], value: value}, nil
}

// Process creates the binding.
func (l *Let) Process(ctx context.Context) (bool, error) {
	v, err := l.mc.Eval.EvalCompiled(l.value, l.mc.Scope)
	if err != nil {
		return false, err
	}
	l.last = v
	l.mc.Scope.Set(l.name, v, false)
	return false, nil
}

// Update rebinds the name when the value changed.
func (l *Let) Update(ctx context.Context) (bool, error) {
	v, err := l.mc.Eval.EvalCompiled(l.value, l.mc.Scope)
	if err != nil {
		return false, err
	}
	if v.RawEquals(l.last) {
		return false, nil
	}
	l.last = v
	l.mc.Scope.Set(l.name, v, false)
	return true, nil
}

// Cleanup is a no-op; the binding dies with its scope.
func (l *Let) Cleanup() {}

// Register registers the descriptor with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.StaticDescriptor{
		Name:    "let",
		Pattern: regexp.MustCompile(`^let-([a-z_][a-z0-9_]*)$`),
		Access:  registry.Write,
		New:     New,
	})
}
