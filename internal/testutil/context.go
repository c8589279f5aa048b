package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/reactive"
	"github.com/vk/weavego/internal/registry"
	"github.com/vk/weavego/internal/scope"
	"github.com/vk/weavego/internal/template"
)

// ModuleContext builds the context a module gets for attribute name=value
// on a bare <div>, with data as the component root. The element scope is a
// child of the root. match is handed over as the descriptor submatches.
func ModuleContext(t *testing.T, name, value string, data map[string]any, match ...string) *registry.Context {
	t.Helper()

	values, err := ctyMap(data)
	require.NoError(t, err)

	return &registry.Context{
		Node:      dom.NewElement("div", ""),
		Template:  &template.Node{Type: template.ElementNode, Tag: "div"},
		Attribute: template.Attr{Name: name, Value: value},
		Match:     append([]string{name}, match...),
		Scope:     scope.NewRoot(reactive.New(values)).Child(),
		Eval:      expr.NewEvaluator(nil),
	}
}

// FakeHost records references and serves child data objects by element.
type FakeHost struct {
	Refs     map[string]*html.Node
	Children map[*html.Node]*reactive.Object
}

// NewFakeHost creates an empty host.
func NewFakeHost() *FakeHost {
	return &FakeHost{
		Refs:     make(map[string]*html.Node),
		Children: make(map[*html.Node]*reactive.Object),
	}
}

// ID implements registry.Host.
func (h *FakeHost) ID() string { return "fake" }

// SetRef implements registry.Host.
func (h *FakeHost) SetRef(name string, n *html.Node) {
	if n == nil {
		delete(h.Refs, name)
		return
	}
	h.Refs[name] = n
}

// ChildData implements registry.Host.
func (h *FakeHost) ChildData(n *html.Node) (*reactive.Object, bool) {
	o, ok := h.Children[n]
	return o, ok
}

var _ registry.Host = (*FakeHost)(nil)
