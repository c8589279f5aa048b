package builder

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/content"
	"github.com/vk/weavego/internal/ctxlog"
	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/fault"
	"github.com/vk/weavego/internal/registry"
	"github.com/vk/weavego/internal/scope"
	"github.com/vk/weavego/internal/template"
)

// entry is one live rendered node together with the state the pipeline
// needs for it.
type entry struct {
	node   *html.Node
	tmpl   *template.Node
	buffer *template.Node // nil for text nodes
	scope  *scope.Layer
}

// link is a module instance linked during build, kept in link order.
type link struct {
	module     registry.Instance
	access     registry.Access
	expression bool
}

// Static renders a fixed list of template nodes.
type Static struct {
	env          Env
	roots        []*template.Node
	scope        *scope.Layer
	anchor       *html.Node
	content      *content.Manager
	inStructural bool

	entries    []*entry
	links      []link
	nested     []*Manipulator
	passes     int
	built      bool
	skipUpdate bool
}

// NewStatic creates an unbuilt Static builder. The anchor exists from the
// start; whoever places the builder puts the anchor into the document.
func NewStatic(env Env, roots []*template.Node, layer *scope.Layer, inStructural bool) *Static {
	anchor := dom.NewAnchor("weavego")
	return &Static{
		env:          env,
		roots:        roots,
		scope:        layer,
		anchor:       anchor,
		content:      content.NewManager(anchor),
		inStructural: inStructural,
	}
}

// Anchor implements content.Subtree.
func (b *Static) Anchor() *html.Node {
	return b.anchor
}

// LastNode implements content.Subtree.
func (b *Static) LastNode() *html.Node {
	return b.content.LastNode()
}

// Scope returns the layer the builder renders in.
func (b *Static) Scope() *scope.Layer {
	return b.scope
}

// Content exposes the builder's tree manager.
func (b *Static) Content() *content.Manager {
	return b.content
}

// Passes returns the number of fixed-point passes the build took.
func (b *Static) Passes() int {
	return b.passes
}

// Nested returns the structural placeholders in tree order.
func (b *Static) Nested() []*Manipulator {
	return b.nested
}

// Build renders the template roots after the anchor.
func (b *Static) Build(ctx context.Context) error {
	if b.built {
		return fault.Contract("builder.Build", "static builder built twice")
	}
	b.built = true
	logger := ctxlog.FromContext(ctx)

	if err := b.skeleton(ctx, nil, b.roots, b.scope); err != nil {
		return err
	}
	if err := b.resolve(ctx); err != nil {
		return err
	}
	if err := b.bindNative(ctx); err != nil {
		return err
	}
	for _, m := range b.nested {
		if err := m.Process(ctx); err != nil {
			return err
		}
	}

	logger.Debug("Static builder built.", "nodes", len(b.entries), "links", len(b.links), "nested", len(b.nested), "passes", b.passes)
	return nil
}

// skeleton creates bare nodes depth-first.
func (b *Static) skeleton(ctx context.Context, parent content.Item, tmpls []*template.Node, layer *scope.Layer) error {
	for _, t := range tmpls {
		switch t.Type {
		case template.FragmentNode:
			if err := b.skeleton(ctx, parent, t.Children, layer); err != nil {
				return err
			}

		case template.TextNode:
			n := dom.NewText("")
			if err := b.content.Append(parent, n, t); err != nil {
				return err
			}
			b.entries = append(b.entries, &entry{node: n, tmpl: t, scope: layer})

		case template.ElementNode:
			if b.env.Registry.IsStructural(t) {
				m := NewManipulator(b.env, t, layer)
				if err := b.content.Append(parent, m, t); err != nil {
					return err
				}
				b.nested = append(b.nested, m)
				continue
			}
			if t.Tag == "template" {
				if err := b.skeleton(ctx, parent, t.Children, layer); err != nil {
					return err
				}
				continue
			}

			el := dom.NewElement(t.Tag, t.Namespace)
			if err := b.content.Append(parent, el, t); err != nil {
				return err
			}
			buffer := &template.Node{
				Type:      t.Type,
				Tag:       t.Tag,
				Namespace: t.Namespace,
				Attrs:     append([]template.Attr(nil), t.Attrs...),
			}
			child := layer.Child()
			b.entries = append(b.entries, &entry{node: el, tmpl: t, buffer: buffer, scope: child})

			if b.env.Mounter != nil {
				nested, ok, err := b.env.Mounter.MountChild(ctx, el, t)
				if err != nil {
					return fmt.Errorf("failed to mount <%s>: %w", t.Tag, err)
				}
				if ok {
					b.content.SetNested(el, nested)
				}
			}

			if err := b.skeleton(ctx, el, t.Children, child); err != nil {
				return err
			}
		}
	}
	return nil
}

// Update re-runs linked modules (Write, then ReadWrite, then Read, then
// expressions) and then the nested manipulators in tree order. It reports
// whether anything changed. The walk stops as soon as ctx is done.
func (b *Static) Update(ctx context.Context) (bool, error) {
	if b.skipUpdate {
		b.skipUpdate = false
		return false, nil
	}

	ordered := append([]link(nil), b.links...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].expression != ordered[j].expression {
			return !ordered[i].expression
		}
		return ordered[i].access < ordered[j].access
	})

	changed := false
	for _, l := range ordered {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		c, err := l.module.Update(ctx)
		if err != nil {
			return changed, err
		}
		changed = changed || c
	}
	for _, m := range b.nested {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		c, err := m.Update(ctx)
		if err != nil {
			return changed, err
		}
		changed = changed || c
	}
	return changed, nil
}

// Teardown implements content.Subtree.
func (b *Static) Teardown() {
	b.content.RemoveAll()
	dom.Detach(b.anchor)
	b.entries = nil
	b.links = nil
	b.nested = nil
}

func (b *Static) link(e *entry, mod registry.Instance, access registry.Access, expression bool) error {
	if err := b.content.Link(e.node, mod); err != nil {
		return err
	}
	b.links = append(b.links, link{module: mod, access: access, expression: expression})
	return nil
}
