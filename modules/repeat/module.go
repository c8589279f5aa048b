// Package repeat implements the `*repeat` structural directive.
//
//	<li *repeat="item of list">{{ item }}</li>
//	<li *repeat="item, i of list">{{ i }}: {{ item }}</li>
//
// Every element of list yields one copy of the element, rendered in a scope
// that binds item. The index binding is opt-in: bound indexes change when
// elements are inserted or removed in front, and a changed binding means the
// copy is rebuilt instead of kept. For maps and objects the index binding
// holds the key.
package repeat

import (
	"context"
	"fmt"
	"regexp"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/registry"
)

var clause = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?:,\s*([A-Za-z_][A-Za-z0-9_]*)\s*)?\s+of\s+(.+?)\s*$`)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Repeat is a live `*repeat` directive.
type Repeat struct {
	mc    *registry.Context
	item  string
	index string
	list  *expr.Compiled

	last cty.Value
	seen bool
}

// New parses the `item[, index] of expr` clause.
func New(mc *registry.Context) (registry.StructuralModule, error) {
	m := clause.FindStringSubmatch(mc.Attribute.Value)
	if m == nil {
		return nil, fmt.Errorf("invalid repeat clause %q, want \"item of list\" or \"item, index of list\"", mc.Attribute.Value)
	}
	list, err := mc.Eval.Compile(m[3])
	if err != nil {
		return nil, err
	}
	return &Repeat{mc: mc, item: m[1], index: m[2], list: list}, nil
}

// Process evaluates the list and yields one item per element.
func (r *Repeat) Process(ctx context.Context) ([]registry.Item, error) {
	v, err := r.mc.Eval.EvalCompiled(r.list, r.mc.Scope)
	if err != nil {
		return nil, err
	}
	r.last, r.seen = v, true

	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}
	ty := v.Type()
	if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() && !ty.IsMapType() && !ty.IsObjectType() {
		return nil, fmt.Errorf("cannot repeat over %s", ty.FriendlyName())
	}

	var items []registry.Item
	for it := v.ElementIterator(); it.Next(); {
		key, elem := it.Element()
		bindings := map[string]cty.Value{r.item: elem}
		if r.index != "" {
			bindings[r.index] = key
		}
		items = append(items, registry.Item{
			Template: r.mc.Template,
			Scope:    r.mc.Scope.With(bindings),
		})
	}
	return items, nil
}

// Update reports whether the list value changed.
func (r *Repeat) Update(ctx context.Context) (bool, error) {
	v, err := r.mc.Eval.EvalCompiled(r.list, r.mc.Scope)
	if err != nil {
		return false, err
	}
	return !r.seen || !v.RawEquals(r.last), nil
}

// Cleanup is a no-op.
func (r *Repeat) Cleanup() {}

// Register registers the descriptor with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.StructuralDescriptor{
		Name:    "repeat",
		Pattern: regexp.MustCompile(`^\*repeat$`),
		New:     New,
	})
}
