package rawhtml

import (
	"context"
	"regexp"

	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/fault"
	"github.com/vk/weavego/internal/registry"
	"github.com/vk/weavego/internal/sanitize"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// InnerHTML replaces the element's content with the sanitized markup of
// `[html]="expr"`.
type InnerHTML struct {
	mc    *registry.Context
	value *expr.Compiled
	last  string
	seen  bool
}

// New compiles the markup expression.
func New(mc *registry.Context) (registry.StaticModule, error) {
	// The element's content belongs to this module. Template children would
	// already be rendered and tracked by the builder.
	if mc.Node.FirstChild != nil {
		return nil, fault.Contract("rawhtml.New", "[html] on <%s> cannot be combined with template content", mc.Node.Data)
	}
	value, err := mc.Eval.Compile(mc.Attribute.Value)
	if err != nil {
		return nil, err
	}
	return &InnerHTML{mc: mc, value: value}, nil
}

// Process renders the initial markup.
func (h *InnerHTML) Process(ctx context.Context) (bool, error) {
	_, err := h.refresh()
	return false, err
}

// Update re-renders when the markup changed.
func (h *InnerHTML) Update(ctx context.Context) (bool, error) {
	return h.refresh()
}

// Cleanup is a no-op.
func (h *InnerHTML) Cleanup() {}

func (h *InnerHTML) refresh() (bool, error) {
	v, err := h.mc.Eval.EvalCompiled(h.value, h.mc.Scope)
	if err != nil {
		return false, err
	}
	markup := sanitize.HTML(expr.Stringify(v))
	if h.seen && markup == h.last {
		return false, nil
	}
	if err := dom.SetInnerHTML(h.mc.Node, markup); err != nil {
		return false, err
	}
	h.last, h.seen = markup, true
	return true, nil
}

// Register registers the descriptor with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.StaticDescriptor{
		Name:    "html",
		Pattern: regexp.MustCompile(`^\[html\]$`),
		Access:  registry.Read,
		New:     New,
	})
}
