package builder

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/ctxlog"
	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/fault"
	"github.com/vk/weavego/internal/registry"
	"github.com/vk/weavego/internal/template"
)

// resolve runs the module stages until no Write or ReadWrite module reports
// an attribute mutation.
func (b *Static) resolve(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	for pass := 1; ; pass++ {
		if pass > MaxPasses {
			return fault.New(fault.ErrIterationOverflow, "builder.resolve", "modules still mutating attributes after %d passes", MaxPasses)
		}
		b.passes = pass

		mutated, err := b.runStage(ctx, registry.Write)
		if err != nil {
			return err
		}
		if mutated {
			logger.Debug("Write stage mutated attributes, restarting.", "pass", pass)
			continue
		}

		mutated, err = b.runStage(ctx, registry.ReadWrite)
		if err != nil {
			return err
		}
		if mutated {
			logger.Debug("ReadWrite stage mutated attributes, restarting.", "pass", pass)
			continue
		}

		if _, err := b.runStage(ctx, registry.Read); err != nil {
			return err
		}
		return nil
	}
}

// runStage resolves and processes the modules of one access type on every
// element, depth-first.
func (b *Static) runStage(ctx context.Context, access registry.Access) (bool, error) {
	mutated := false
	for _, e := range b.entries {
		if e.buffer == nil {
			continue
		}
		resolved, err := b.env.Registry.ResolveStatic(e.buffer, access, b.inStructural)
		if err != nil {
			return false, err
		}
		for _, r := range resolved {
			m, err := b.processStatic(ctx, e, r)
			if err != nil {
				return false, err
			}
			mutated = mutated || m
		}
	}
	return mutated, nil
}

func (b *Static) processStatic(ctx context.Context, e *entry, r registry.Resolved) (bool, error) {
	const op = "builder.processStatic"
	d := r.Descriptor

	mod, err := d.New(b.env.moduleContext(e, r.Attribute, r.Match, b.inStructural))
	if err != nil {
		return false, fmt.Errorf("failed to create module '%s' for %s: %w", d.Name, r.Attribute.Name, err)
	}
	if err := b.link(e, mod, d.Access, false); err != nil {
		return false, err
	}

	mutated, err := mod.Process(ctx)
	if err != nil {
		return false, fmt.Errorf("module '%s' failed on %s: %w", d.Name, r.Attribute.Name, err)
	}
	if mutated && !d.MutatesAttributes {
		return false, fault.Contract(op, "module '%s' mutated attributes without declaring it", d.Name)
	}
	return mutated, nil
}

// bindNative renders unclaimed attributes and text content.
func (b *Static) bindNative(ctx context.Context) error {
	for _, e := range b.entries {
		if e.buffer == nil {
			raw := e.tmpl.Data
			if !expr.HasDelimiters(raw) {
				e.node.Data = raw
				continue
			}
			if err := b.bindExpression(ctx, e, template.Attr{Name: registry.TextAttr, Value: raw}); err != nil {
				return err
			}
			continue
		}

		for _, attr := range e.buffer.Attrs {
			if expr.HasDelimiters(attr.Value) {
				if err := b.bindExpression(ctx, e, attr); err != nil {
					return err
				}
				continue
			}
			setNative(e.node, attr)
		}
	}
	return nil
}

// setNative copies a plain attribute to the node. Values that modules
// already wrote win, except for class, whose tokens are merged.
func setNative(n *html.Node, attr template.Attr) {
	current, ok := dom.GetAttr(n, attr.Name)
	if !ok {
		n.Attr = append(n.Attr, html.Attribute{Namespace: attr.Namespace, Key: attr.Name, Val: attr.Value})
		return
	}
	if attr.Name != "class" {
		return
	}
	dom.SetAttr(n, "class", mergeTokens(attr.Value, current))
}

func mergeTokens(first, second string) string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range append(strings.Fields(first), strings.Fields(second)...) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}

func (b *Static) bindExpression(ctx context.Context, e *entry, attr template.Attr) error {
	const op = "builder.bindExpression"

	d := b.env.Registry.ResolveExpression(attr.Name)
	if d == nil {
		return fault.Resolution(op, "no expression module for '%s'", attr.Name)
	}
	mod, err := d.New(b.env.moduleContext(e, attr, d.Pattern.FindStringSubmatch(attr.Name), b.inStructural))
	if err != nil {
		return fmt.Errorf("failed to create expression module '%s' for %s: %w", d.Name, attr.Name, err)
	}
	rendered, err := mod.Process(ctx)
	if err != nil {
		mod.Cleanup()
		return fmt.Errorf("failed to render %s: %w", attr.Name, err)
	}
	if rendered == attr.Value {
		mod.Cleanup()
		return nil
	}
	return b.link(e, mod, registry.Read, true)
}
