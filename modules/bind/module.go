// Package bind implements `[name]="expr"` property bindings.
//
// On a plain element the value becomes the attribute name: null and false
// remove the attribute, true sets it empty, anything else is stringified.
// On an element that hosts a nested component the value is written to the
// component's data object under name instead.
package bind

import (
	"context"
	"regexp"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Binding is a live property binding.
type Binding struct {
	mc    *registry.Context
	name  string
	value *expr.Compiled

	last cty.Value
	seen bool
}

// New compiles the bound expression.
func New(mc *registry.Context) (registry.StaticModule, error) {
	value, err := mc.Eval.Compile(mc.Attribute.Value)
	if err != nil {
		return nil, err
	}
	return &Binding{mc: mc, name: mc.Match[1], value: value}, nil
}

// Process applies the first value.
func (b *Binding) Process(ctx context.Context) (bool, error) {
	_, err := b.refresh()
	return false, err
}

// Update applies the value again when it changed.
func (b *Binding) Update(ctx context.Context) (bool, error) {
	return b.refresh()
}

// Cleanup is a no-op.
func (b *Binding) Cleanup() {}

func (b *Binding) refresh() (bool, error) {
	v, err := b.mc.Eval.EvalCompiled(b.value, b.mc.Scope)
	if err != nil {
		return false, err
	}
	if b.seen && v.RawEquals(b.last) {
		return false, nil
	}
	b.last, b.seen = v, true
	b.apply(v)
	return true, nil
}

func (b *Binding) apply(v cty.Value) {
	if b.mc.Host != nil {
		if data, ok := b.mc.Host.ChildData(b.mc.Node); ok {
			data.Set(b.name, v)
			return
		}
	}

	switch {
	case v.IsNull() || (v.Type() == cty.Bool && v.False()):
		dom.RemoveAttr(b.mc.Node, b.name)
	case v.Type() == cty.Bool:
		dom.SetAttr(b.mc.Node, b.name, "")
	default:
		dom.SetAttr(b.mc.Node, b.name, expr.Stringify(v))
	}
}

// Register registers the descriptor with the registry. Register it after
// the modules whose patterns are more specific bracket names.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.StaticDescriptor{
		Name:    "bind",
		Pattern: regexp.MustCompile(`^\[([A-Za-z_][A-Za-z0-9_-]*)\]$`),
		Access:  registry.Read,
		New:     New,
	})
}
