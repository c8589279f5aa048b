// Package spread implements `[attrs]="{ name = value, ... }"`.
//
// During build the object's entries are added to the element's attribute
// buffer, where they are resolved like attributes written in the template.
// A plain entry is copied to the element. An entry that another module
// claims, such as `[class.done]`, reaches that module as a reference to a
// binding in the element scope, so the module keeps following the entry's
// value. Adding attributes restarts fixed-point resolution.
//
// On update plain entries are applied to the element directly and claimed
// entries rebind their scope variable. Claimed entries are fixed at build:
// one that only appears later has no module to drive and is ignored.
package spread

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/weavego/internal/ctxlog"
	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Spread is a live attribute spread.
type Spread struct {
	mc    *registry.Context
	value *expr.Compiled
	plain map[string]string
	bound map[string]cty.Value
}

// New compiles the spread expression.
func New(mc *registry.Context) (registry.StaticModule, error) {
	value, err := mc.Eval.Compile(mc.Attribute.Value)
	if err != nil {
		return nil, err
	}
	return &Spread{mc: mc, value: value}, nil
}

// claimed reports whether another module resolves an attribute named name.
func (s *Spread) claimed(name string) bool {
	return s.mc.Registry != nil && name != s.mc.Attribute.Name && s.mc.Registry.ClaimsStatic(name)
}

// entries splits the evaluated object into plain attributes, rendered as
// strings, and claimed entries, kept as values. Null and false plain
// entries are dropped; claimed ones are kept so their module can see them.
func (s *Spread) entries() (map[string]string, map[string]cty.Value, error) {
	v, err := s.mc.Eval.EvalCompiled(s.value, s.mc.Scope)
	if err != nil {
		return nil, nil, err
	}
	plain := make(map[string]string)
	bound := make(map[string]cty.Value)
	if v.IsNull() {
		return plain, bound, nil
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, nil, fmt.Errorf("attribute spread needs an object, got %s", ty.FriendlyName())
	}
	for it := v.ElementIterator(); it.Next(); {
		k, elem := it.Element()
		name := k.AsString()
		if s.claimed(name) {
			bound[name] = elem
			continue
		}
		if elem.IsNull() || (elem.Type() == cty.Bool && elem.False()) {
			continue
		}
		plain[name] = expr.Stringify(elem)
	}
	return plain, bound, nil
}

// Process adds the entries to the attribute buffer. It reports a mutation
// when the buffer changed.
func (s *Spread) Process(ctx context.Context) (bool, error) {
	plain, bound, err := s.entries()
	if err != nil {
		return false, err
	}
	s.plain, s.bound = plain, bound

	mutated := false
	for _, name := range sortedKeys(bound) {
		variable := bindingName(name)
		s.mc.Scope.Set(variable, bound[name], false)
		if current, ok := s.mc.Template.Attr(name); ok && current == variable {
			continue
		}
		s.mc.Template.SetAttr(name, variable)
		mutated = true
	}
	for _, name := range sortedKeys(plain) {
		if current, ok := s.mc.Template.Attr(name); ok && current == plain[name] {
			continue
		}
		s.mc.Template.SetAttr(name, plain[name])
		mutated = true
	}
	return mutated, nil
}

// Update rebinds claimed entries, applies changed plain entries to the
// element and removes dropped ones.
func (s *Spread) Update(ctx context.Context) (bool, error) {
	plain, bound, err := s.entries()
	if err != nil {
		return false, err
	}
	changed := false

	for _, name := range sortedKeys(bound) {
		if _, ok := s.bound[name]; !ok {
			ctxlog.FromContext(ctx).Debug("Spread entry appeared after build, ignoring.", "attribute", name)
		}
	}
	for _, name := range sortedKeys(s.bound) {
		v, ok := bound[name]
		if !ok {
			v = cty.NullVal(cty.DynamicPseudoType)
		}
		if v.RawEquals(s.bound[name]) {
			continue
		}
		s.mc.Scope.Set(bindingName(name), v, false)
		s.bound[name] = v
		changed = true
	}

	for _, name := range sortedKeys(plain) {
		if prev, ok := s.plain[name]; ok && prev == plain[name] {
			continue
		}
		dom.SetAttr(s.mc.Node, name, plain[name])
		changed = true
	}
	for name := range s.plain {
		if _, ok := plain[name]; !ok {
			dom.RemoveAttr(s.mc.Node, name)
			changed = true
		}
	}
	s.plain = plain
	return changed, nil
}

// Cleanup is a no-op.
func (s *Spread) Cleanup() {}

// bindingName is the element scope variable a claimed entry is passed
// through. Characters outside [A-Za-z0-9] are hex-escaped, so distinct
// attribute names never share a variable.
func bindingName(attr string) string {
	var b strings.Builder
	b.WriteString("spread_")
	for i := 0; i < len(attr); i++ {
		c := attr[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "_%02x", c)
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Register registers the descriptor with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.StaticDescriptor{
		Name:              "attrs",
		Pattern:           regexp.MustCompile(`^\[attrs\]$`),
		Access:            registry.ReadWrite,
		MutatesAttributes: true,
		New:               New,
	})
}
