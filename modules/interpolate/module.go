package interpolate

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Interpolation renders `{{ }}` expressions into a text node or an
// attribute and re-renders them on update.
type Interpolation struct {
	mc   *registry.Context
	tmpl *expr.Template
	last string
}

// New compiles the raw attribute or text value.
func New(mc *registry.Context) (registry.ExpressionModule, error) {
	tmpl, err := mc.Eval.CompileTemplate(mc.Attribute.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", mc.Attribute.Name, err)
	}
	return &Interpolation{mc: mc, tmpl: tmpl}, nil
}

// Process renders and applies the value.
func (i *Interpolation) Process(ctx context.Context) (string, error) {
	s, err := i.mc.Eval.Render(i.tmpl, i.mc.Scope)
	if err != nil {
		return "", err
	}
	i.apply(s)
	i.last = s
	return s, nil
}

// Update re-renders and applies the value when it changed.
func (i *Interpolation) Update(ctx context.Context) (bool, error) {
	s, err := i.mc.Eval.Render(i.tmpl, i.mc.Scope)
	if err != nil {
		return false, err
	}
	if s == i.last {
		return false, nil
	}
	i.apply(s)
	i.last = s
	return true, nil
}

// Cleanup is a no-op; the node goes away with its owner.
func (i *Interpolation) Cleanup() {}

func (i *Interpolation) apply(s string) {
	switch i.mc.Attribute.Name {
	case registry.TextAttr:
		i.mc.Node.Data = s
	case "class":
		// Other modules toggle tokens on the same attribute; only the
		// tokens of the previous rendering are ours to replace.
		current, _ := dom.GetAttr(i.mc.Node, "class")
		tokens := mergeTokens(strings.Fields(s), withoutTokens(strings.Fields(current), strings.Fields(i.last)))
		if len(tokens) == 0 {
			dom.RemoveAttr(i.mc.Node, "class")
			return
		}
		dom.SetAttr(i.mc.Node, "class", strings.Join(tokens, " "))
	default:
		dom.SetAttr(i.mc.Node, i.mc.Attribute.Name, s)
	}
}

func withoutTokens(tokens, drop []string) []string {
	var out []string
	for _, tok := range tokens {
		if !slices.Contains(drop, tok) {
			out = append(out, tok)
		}
	}
	return out
}

func mergeTokens(first, second []string) []string {
	var out []string
	for _, tok := range append(first, second...) {
		if !slices.Contains(out, tok) {
			out = append(out, tok)
		}
	}
	return out
}

// Register registers the descriptor with the registry. It matches every
// name, so it belongs last among expression modules.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.ExpressionDescriptor{
		Name:    "interpolate",
		Pattern: regexp.MustCompile(`.*`),
		New:     New,
	})
}
