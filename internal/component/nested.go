package component

import (
	"context"

	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/content"
	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/fault"
	"github.com/vk/weavego/internal/template"
)

// SlotTag is the element that marks a content root in a component
// template.
const SlotTag = "slot"

// MountChild implements builder.Mounter.
func (c *Component) MountChild(ctx context.Context, el *html.Node, tmpl *template.Node) (content.Nested, bool, error) {
	if c.opts.Definitions == nil {
		return nil, false, nil
	}
	def, ok := c.opts.Definitions.Lookup(tmpl.Tag)
	if !ok {
		return nil, false, nil
	}

	opts := c.opts
	opts.Definition = def
	opts.Host = el
	opts.Data = nil
	child := New(ctx, opts)
	child.onDestroy = func() { delete(c.children, el) }

	if err := child.InitializeBuild(ctx); err != nil {
		return nil, false, err
	}
	c.children[el] = child
	return child, true, nil
}

// ContentRoots implements content.Nested. It returns the component's
// `<slot>` elements, not looking into nested components.
func (c *Component) ContentRoots() []*html.Node {
	return dom.FindAll(c.host,
		func(n *html.Node) bool { return n.Data == SlotTag },
		func(n *html.Node) bool { _, nested := c.children[n]; return nested },
	)
}

// AssignSlot implements content.Nested. A child names its root with the
// slot attribute; children without one go to the unnamed root.
func (c *Component) AssignSlot(tmpl *template.Node) (string, *html.Node, error) {
	name := ""
	if tmpl != nil && tmpl.Type == template.ElementNode {
		name, _ = tmpl.Attr(content.SlotAttr)
	}
	for _, root := range c.ContentRoots() {
		rootName, _ := dom.GetAttr(root, "name")
		if rootName == name {
			return name, root, nil
		}
	}
	return "", nil, fault.Resolution("component.AssignSlot", "component %s has no slot named '%s'", c.Name(), name)
}

// Destroy implements content.Nested.
func (c *Component) Destroy() {
	_ = c.DeleteBuild(c.ctx)
}
