package classlist

import (
	"context"
	"regexp"
	"strings"

	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Toggle adds a class token while its condition is truthy.
type Toggle struct {
	mc    *registry.Context
	token string
	cond  *expr.Compiled

	on   bool
	seen bool
}

// New compiles the condition of `[class.token]`.
func New(mc *registry.Context) (registry.StaticModule, error) {
	cond, err := mc.Eval.Compile(mc.Attribute.Value)
	if err != nil {
		return nil, err
	}
	return &Toggle{mc: mc, token: mc.Match[1], cond: cond}, nil
}

// Process applies the initial state.
func (t *Toggle) Process(ctx context.Context) (bool, error) {
	_, err := t.refresh()
	return false, err
}

// Update toggles the token when the condition flipped.
func (t *Toggle) Update(ctx context.Context) (bool, error) {
	return t.refresh()
}

// Cleanup is a no-op.
func (t *Toggle) Cleanup() {}

func (t *Toggle) refresh() (bool, error) {
	v, err := t.mc.Eval.EvalCompiled(t.cond, t.mc.Scope)
	if err != nil {
		return false, err
	}
	on := expr.Truthy(v)
	if t.seen && on == t.on {
		return false, nil
	}
	t.on, t.seen = on, true
	setToken(t.mc, t.token, on)
	return true, nil
}

func setToken(mc *registry.Context, token string, on bool) {
	current, _ := dom.GetAttr(mc.Node, "class")
	var tokens []string
	for _, tok := range strings.Fields(current) {
		if tok != token {
			tokens = append(tokens, tok)
		}
	}
	if on {
		tokens = append(tokens, token)
	}
	if len(tokens) == 0 {
		dom.RemoveAttr(mc.Node, "class")
		return
	}
	dom.SetAttr(mc.Node, "class", strings.Join(tokens, " "))
}

// Register registers the descriptor with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.StaticDescriptor{
		Name:    "class",
		Pattern: regexp.MustCompile(`^\[class\.([A-Za-z0-9_-]+)\]$`),
		Access:  registry.Read,
		New:     New,
	})
}
