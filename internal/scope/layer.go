// Package scope implements the chained variable lookup used to evaluate
// template expressions.
//
// A root layer sits over a component's reactive data object. Child layers
// add temporary bindings, such as the current item of a loop, and are owned
// by the builder that created them. Lookups walk from the innermost layer
// outwards and end at the data object.
package scope

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/weavego/internal/reactive"
)

// Layer is one nesting level of template evaluation.
type Layer struct {
	parent   *Layer
	data     *reactive.Object
	bindings map[string]cty.Value
	depth    int
}

// NewRoot creates the root layer over a component's data object.
func NewRoot(data *reactive.Object) *Layer {
	return &Layer{
		data:     data,
		bindings: make(map[string]cty.Value),
	}
}

// Child creates a new layer whose lookups fall back to l.
func (l *Layer) Child() *Layer {
	return &Layer{
		parent:   l,
		data:     l.data,
		bindings: make(map[string]cty.Value),
		depth:    l.depth + 1,
	}
}

// With is a convenience for Child followed by local Sets.
func (l *Layer) With(bindings map[string]cty.Value) *Layer {
	c := l.Child()
	for k, v := range bindings {
		c.bindings[k] = v
	}
	return c
}

// Parent returns the enclosing layer, or nil for the root.
func (l *Layer) Parent() *Layer {
	return l.parent
}

// Depth is 0 for the root layer and grows by one per child.
func (l *Layer) Depth() int {
	return l.depth
}

// Data returns the root data object the chain resolves to.
func (l *Layer) Data() *reactive.Object {
	return l.data
}

// Get looks name up in this layer, then in each parent, then in the root
// data object.
func (l *Layer) Get(name string) (cty.Value, bool) {
	for cur := l; cur != nil; cur = cur.parent {
		if v, ok := cur.bindings[name]; ok {
			return v, true
		}
	}
	if l.data == nil {
		return cty.NilVal, false
	}
	return l.data.Get(name)
}

// Set binds name in this layer or, when writeToRoot is set, writes it to the
// root data object, which notifies the data object's subscribers.
func (l *Layer) Set(name string, value cty.Value, writeToRoot bool) {
	if writeToRoot && l.data != nil {
		l.data.Set(name, value)
		return
	}
	l.bindings[name] = value
}

// Local returns the bindings defined directly on this layer.
func (l *Layer) Local() map[string]cty.Value {
	out := make(map[string]cty.Value, len(l.bindings))
	for k, v := range l.bindings {
		out[k] = v
	}
	return out
}

// Visible returns every temporary binding visible from this layer, with
// inner layers shadowing outer ones. Data object properties are excluded.
func (l *Layer) Visible() map[string]cty.Value {
	var chain []*Layer
	for cur := l; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	out := make(map[string]cty.Value)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].bindings {
			out[k] = v
		}
	}
	return out
}

// Names returns the visible temporary binding names in sorted order.
func (l *Layer) Names() []string {
	visible := l.Visible()
	names := make([]string, 0, len(visible))
	for k := range visible {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether two layers resolve to the same root data object and
// expose identical temporary bindings.
//
// The binding comparison runs in both directions, A against B and then B
// against A, and stops at the first mismatch. The second direction is
// redundant whenever both sides hold the same names; it is kept because
// asymmetric binding sets are not ruled out anywhere else.
func (l *Layer) Equal(other *Layer) bool {
	if l == other {
		return true
	}
	if l == nil || other == nil {
		return false
	}
	if l.data != other.data {
		return false
	}
	a, b := l.Visible(), other.Visible()
	return covers(a, b) && covers(b, a)
}

// covers reports whether every binding of from exists in to with an
// identical value.
func covers(from, to map[string]cty.Value) bool {
	for name, v := range from {
		w, ok := to[name]
		if !ok || !v.RawEquals(w) {
			return false
		}
	}
	return true
}

// EvalContext builds an HCL evaluation context chain mirroring the layer
// chain: the outermost context holds the data object's properties and the
// functions, and each layer adds a child context with its own bindings.
func (l *Layer) EvalContext(functions map[string]function.Function) *hcl.EvalContext {
	var chain []*Layer
	for cur := l; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}

	root := &hcl.EvalContext{Functions: functions}
	if l.data != nil {
		root.Variables = l.data.Variables()
	}

	ctx := root
	for i := len(chain) - 1; i >= 0; i-- {
		if len(chain[i].bindings) == 0 {
			continue
		}
		ctx = ctx.NewChild()
		ctx.Variables = chain[i].Local()
	}
	return ctx
}
