package conditional

import (
	"context"
	"regexp"

	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// If renders its element once while the condition is truthy.
type If struct {
	mc   *registry.Context
	cond *expr.Compiled

	last bool
	seen bool
}

// New compiles the condition.
func New(mc *registry.Context) (registry.StructuralModule, error) {
	cond, err := mc.Eval.Compile(mc.Attribute.Value)
	if err != nil {
		return nil, err
	}
	return &If{mc: mc, cond: cond}, nil
}

func (i *If) eval() (bool, error) {
	v, err := i.mc.Eval.EvalCompiled(i.cond, i.mc.Scope)
	if err != nil {
		return false, err
	}
	return expr.Truthy(v), nil
}

// Process yields the element when the condition holds.
func (i *If) Process(ctx context.Context) ([]registry.Item, error) {
	ok, err := i.eval()
	if err != nil {
		return nil, err
	}
	i.last, i.seen = ok, true
	if !ok {
		return nil, nil
	}
	return []registry.Item{{Template: i.mc.Template, Scope: i.mc.Scope.Child()}}, nil
}

// Update reports whether the condition's truthiness flipped.
func (i *If) Update(ctx context.Context) (bool, error) {
	ok, err := i.eval()
	if err != nil {
		return false, err
	}
	return !i.seen || ok != i.last, nil
}

// Cleanup is a no-op.
func (i *If) Cleanup() {}

// Register registers the descriptor with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.StructuralDescriptor{
		Name:    "if",
		Pattern: regexp.MustCompile(`^\*if$`),
		New:     New,
	})
}
