package builder

import (
	"context"

	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/content"
	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/registry"
	"github.com/vk/weavego/internal/template"
)

// MaxPasses bounds fixed-point module resolution.
const MaxPasses = 20

// Mounter mounts nested components on elements during the skeleton pass.
type Mounter interface {
	// MountChild mounts the component defined for tmpl's tag on el. It
	// reports false when the tag names no component.
	MountChild(ctx context.Context, el *html.Node, tmpl *template.Node) (content.Nested, bool, error)
}

// Env is what every builder of one component shares.
type Env struct {
	Registry  *registry.Registry
	Evaluator *expr.Evaluator
	Host      registry.Host
	// Mounter may be nil, in which case no tag is treated as a component.
	Mounter Mounter
}

func (e Env) moduleContext(s *entry, attr template.Attr, match []string, inStructural bool) *registry.Context {
	return &registry.Context{
		Node:         s.node,
		Template:     s.buffer,
		Attribute:    attr,
		Match:        match,
		Scope:        s.scope,
		Eval:         e.Evaluator,
		Host:         e.Host,
		InStructural: inStructural,
		Registry:     e.Registry,
	}
}
