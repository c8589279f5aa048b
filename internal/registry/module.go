package registry

import (
	"context"

	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/reactive"
	"github.com/vk/weavego/internal/scope"
	"github.com/vk/weavego/internal/template"
)

// Module is the interface that all built-in module packages implement to
// add their descriptors to a registry.
type Module interface {
	Register(r *Registry)
}

// Instance is the part of the module contract shared by every kind.
type Instance interface {
	// Update re-evaluates the module after a data change and reports
	// whether anything observable changed.
	Update(ctx context.Context) (bool, error)
	// Cleanup releases whatever the instance holds. It is called exactly
	// once, when the node the instance is linked to is removed.
	Cleanup()
}

// StaticModule is a per-attribute behavior on one rendered node.
type StaticModule interface {
	Instance
	// Process runs during build. It reports whether it changed the node's
	// attribute buffer.
	Process(ctx context.Context) (mutated bool, err error)
}

// Item is one result of a structural directive: a template element to
// render and the scope to render it in.
type Item struct {
	Template *template.Node
	Scope    *scope.Layer
}

// StructuralModule is a directive that yields zero or more subtrees.
// Update reports whether the driving expression changed, in which case the
// caller invokes Process again for a fresh list.
type StructuralModule interface {
	Instance
	Process(ctx context.Context) ([]Item, error)
}

// ExpressionModule renders delimited expressions into a text node or an
// attribute. Process applies the first rendering and returns it.
type ExpressionModule interface {
	Instance
	Process(ctx context.Context) (string, error)
}

// Host is the component a module runs in.
type Host interface {
	// ID is the component instance id.
	ID() string
	// SetRef records a named element reference.
	SetRef(name string, n *html.Node)
	// ChildData returns the data object of the nested component mounted on
	// n, if any.
	ChildData(n *html.Node) (*reactive.Object, bool)
}

// Context is the bag handed to a descriptor's New function.
type Context struct {
	// Node is the rendered node. Structural modules get nil.
	Node *html.Node
	// Template is the node's attribute buffer, a mutable clone of the
	// originating template node. Attributes claimed by modules are already
	// removed from it.
	Template *template.Node
	// Attribute is the claimed attribute. For text nodes Name is TextAttr
	// and Value is the raw text.
	Attribute template.Attr
	// Match holds the submatches of the descriptor pattern.
	Match        []string
	Scope        *scope.Layer
	Eval         *expr.Evaluator
	Host         Host
	InStructural bool
	// Registry is the registry the module was resolved from. It may be nil
	// outside a builder.
	Registry *Registry
}
