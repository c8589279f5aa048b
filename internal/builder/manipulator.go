package builder

import (
	"context"
	"fmt"

	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/content"
	"github.com/vk/weavego/internal/ctxlog"
	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/fault"
	"github.com/vk/weavego/internal/registry"
	"github.com/vk/weavego/internal/scope"
	"github.com/vk/weavego/internal/template"
)

// Manipulator renders the subtrees a structural directive yields. It owns
// Static builders only.
type Manipulator struct {
	env     Env
	tmpl    *template.Node
	scope   *scope.Layer
	anchor  *html.Node
	content *content.Manager

	module   registry.StructuralModule
	name     string
	builders []*Static
	items    []registry.Item
}

// NewManipulator creates an unprocessed placeholder for tmpl.
func NewManipulator(env Env, tmpl *template.Node, layer *scope.Layer) *Manipulator {
	anchor := dom.NewAnchor("weavego:" + tmpl.Tag)
	return &Manipulator{
		env:     env,
		tmpl:    tmpl,
		scope:   layer,
		anchor:  anchor,
		content: content.NewManager(anchor),
	}
}

// Anchor implements content.Subtree.
func (m *Manipulator) Anchor() *html.Node {
	return m.anchor
}

// LastNode implements content.Subtree.
func (m *Manipulator) LastNode() *html.Node {
	return m.content.LastNode()
}

// Builders returns the current Static builders in render order.
func (m *Manipulator) Builders() []*Static {
	return append([]*Static(nil), m.builders...)
}

// Process resolves the directive and builds one Static builder per result.
func (m *Manipulator) Process(ctx context.Context) error {
	const op = "builder.Manipulator.Process"
	if m.module != nil {
		return fault.Contract(op, "directive on %s processed twice", m.tmpl)
	}

	buffer := m.tmpl.Clone()
	resolved, err := m.env.Registry.ResolveStructural(buffer)
	if err != nil {
		return err
	}
	d := resolved.Descriptor
	mod, err := d.New(&registry.Context{
		Template:     buffer,
		Attribute:    resolved.Attribute,
		Match:        resolved.Match,
		Scope:        m.scope,
		Eval:         m.env.Evaluator,
		Host:         m.env.Host,
		InStructural: true,
		Registry:     m.env.Registry,
	})
	if err != nil {
		return fmt.Errorf("failed to create directive '%s': %w", d.Name, err)
	}
	m.module = mod
	m.name = d.Name

	items, err := mod.Process(ctx)
	if err != nil {
		return fmt.Errorf("directive '%s' failed: %w", d.Name, err)
	}
	for _, item := range items {
		b := NewStatic(m.env, []*template.Node{item.Template}, item.Scope, true)
		if err := m.content.Append(nil, b, item.Template); err != nil {
			return err
		}
		if err := b.Build(ctx); err != nil {
			return err
		}
		m.builders = append(m.builders, b)
	}
	m.items = items

	ctxlog.FromContext(ctx).Debug("Directive processed.", "directive", d.Name, "items", len(items))
	return nil
}

// Update reconciles the builders against a fresh result list when the
// directive reports a change, then updates the surviving builders. It
// reports true only when at least one builder was inserted.
func (m *Manipulator) Update(ctx context.Context) (bool, error) {
	if m.module == nil {
		return false, nil
	}
	logger := ctxlog.FromContext(ctx)

	changed, err := m.module.Update(ctx)
	if err != nil {
		return false, fmt.Errorf("directive '%s' failed: %w", m.name, err)
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}

	inserted := false
	if changed {
		fresh, err := m.module.Process(ctx)
		if err != nil {
			return false, fmt.Errorf("directive '%s' failed: %w", m.name, err)
		}
		inserted, err = m.reconcile(ctx, fresh)
		if err != nil {
			return inserted, err
		}
	}

	for _, b := range m.builders {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}
		if _, err := b.Update(ctx); err != nil {
			return inserted, err
		}
	}

	logger.Debug("Directive updated.", "directive", m.name, "changed", changed, "inserted", inserted, "items", len(m.items))
	return inserted, nil
}

func (m *Manipulator) reconcile(ctx context.Context, fresh []registry.Item) (bool, error) {
	ops := Reconcile(m.items, fresh)

	var (
		builders []*Static
		items    []registry.Item
		cursor   *Static
		inserted bool
	)
	for _, op := range ops {
		switch op.Kind {
		case Keep:
			cursor = m.builders[op.Old]
			builders = append(builders, cursor)
			items = append(items, m.items[op.Old])

		case Remove:
			m.content.Remove(m.builders[op.Old])

		case Insert:
			item := fresh[op.New]
			b := NewStatic(m.env, []*template.Node{item.Template}, item.Scope, true)
			var err error
			if cursor == nil {
				err = m.content.Prepend(b, item.Template)
			} else {
				err = m.content.InsertAfter(cursor, b, item.Template)
			}
			if err != nil {
				return inserted, err
			}
			if err := b.Build(ctx); err != nil {
				return inserted, err
			}
			b.skipUpdate = true
			cursor = b
			builders = append(builders, b)
			items = append(items, item)
			inserted = true
		}
	}

	m.builders = builders
	m.items = items
	return inserted, nil
}

// Teardown implements content.Subtree.
func (m *Manipulator) Teardown() {
	m.content.RemoveAll()
	if m.module != nil {
		m.module.Cleanup()
		m.module = nil
	}
	dom.Detach(m.anchor)
	m.builders = nil
	m.items = nil
}
