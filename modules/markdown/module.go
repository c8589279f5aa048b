package markdown

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/fault"
	"github.com/vk/weavego/internal/registry"
	"github.com/vk/weavego/internal/sanitize"
)

// converter is initialized once and reused; its configuration never
// changes.
var (
	converterInstance goldmark.Markdown
	converterOnce     sync.Once
)

func converter() goldmark.Markdown {
	converterOnce.Do(func() {
		converterInstance = goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough),
		)
	})
	return converterInstance
}

// Render converts markdown source to sanitized HTML.
func Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := converter().Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return sanitize.HTML(buf.String()), nil
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Markdown replaces the element's content with the rendering of
// `[markdown]="expr"`.
type Markdown struct {
	mc     *registry.Context
	value  *expr.Compiled
	source string
	seen   bool
}

// New compiles the source expression.
func New(mc *registry.Context) (registry.StaticModule, error) {
	// The element's content belongs to this module. Template children would
	// already be rendered and tracked by the builder.
	if mc.Node.FirstChild != nil {
		return nil, fault.Contract("markdown.New", "[markdown] on <%s> cannot be combined with template content", mc.Node.Data)
	}
	value, err := mc.Eval.Compile(mc.Attribute.Value)
	if err != nil {
		return nil, err
	}
	return &Markdown{mc: mc, value: value}, nil
}

// Process renders the initial source.
func (m *Markdown) Process(ctx context.Context) (bool, error) {
	_, err := m.refresh()
	return false, err
}

// Update re-renders when the source changed.
func (m *Markdown) Update(ctx context.Context) (bool, error) {
	return m.refresh()
}

// Cleanup is a no-op.
func (m *Markdown) Cleanup() {}

func (m *Markdown) refresh() (bool, error) {
	v, err := m.mc.Eval.EvalCompiled(m.value, m.mc.Scope)
	if err != nil {
		return false, err
	}
	source := expr.Stringify(v)
	if m.seen && source == m.source {
		return false, nil
	}
	markup, err := Render(source)
	if err != nil {
		return false, err
	}
	if err := dom.SetInnerHTML(m.mc.Node, markup); err != nil {
		return false, err
	}
	m.source, m.seen = source, true
	return true, nil
}

// Register registers the descriptor with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.StaticDescriptor{
		Name:    "markdown",
		Pattern: regexp.MustCompile(`^\[markdown\]$`),
		Access:  registry.Read,
		New:     New,
	})
}
