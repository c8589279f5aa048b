// Package component binds the builder, the scheduler and a reactive data
// object to one host element.
//
// A Component renders its definition's template into the host element,
// subscribes to its data object and turns every property write into a
// scheduled update. Custom tags in the template that name another
// definition are mounted as nested components; the children written
// between their tags are projected into their `<slot>` elements.
//
// Errors raised by a build or an update are reported to the application's
// error channel and returned. The component is then broken: every further
// call returns ErrBroken until DeleteBuild tears it down.
package component

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/builder"
	"github.com/vk/weavego/internal/ctxlog"
	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/fault"
	"github.com/vk/weavego/internal/reactive"
	"github.com/vk/weavego/internal/registry"
	"github.com/vk/weavego/internal/scheduler"
	"github.com/vk/weavego/internal/scope"
	"github.com/vk/weavego/internal/template"
)

// ErrBroken is returned by a component whose build or update failed.
var ErrBroken = errors.New("component is broken")

// Definition is a registered component: a parsed template shared by every
// instance and the initial data of new instances.
type Definition struct {
	Name     string
	Template *template.Node
	Data     map[string]cty.Value
}

// Definitions looks definitions up by tag name.
type Definitions interface {
	Lookup(tag string) (*Definition, bool)
}

// Options configures a component.
type Options struct {
	Definition *Definition
	// Host is the element the component renders into.
	Host *html.Node
	// Data is the component's data object. When nil a new object is
	// created from the definition's data.
	Data      *reactive.Object
	Registry  *registry.Registry
	Evaluator *expr.Evaluator
	Frames    scheduler.FrameSource
	// Definitions resolves nested component tags. It may be nil.
	Definitions Definitions
	// Report receives every error that reaches the component boundary.
	Report func(c *Component, err error)
}

// Component is one mounted component instance.
type Component struct {
	id   string
	opts Options
	ctx  context.Context

	host  *html.Node
	data  *reactive.Object
	root  *scope.Layer
	sched *scheduler.Scheduler
	build *builder.Static

	refs        map[string]*html.Node
	children    map[*html.Node]*Component
	onDestroy   func()
	unsubscribe func()
	initialized bool
	broken      error
}

// New creates an uninitialized component.
func New(ctx context.Context, opts Options) *Component {
	data := opts.Data
	if data == nil {
		initial := make(map[string]cty.Value, len(opts.Definition.Data))
		for k, v := range opts.Definition.Data {
			initial[k] = v
		}
		data = reactive.New(initial)
	}

	id := uuid.NewString()
	return &Component{
		id:       id,
		opts:     opts,
		ctx:      ctxlog.With(ctx, "component", opts.Definition.Name, "id", id),
		host:     opts.Host,
		data:     data,
		root:     scope.NewRoot(data),
		refs:     make(map[string]*html.Node),
		children: make(map[*html.Node]*Component),
	}
}

// ID implements registry.Host.
func (c *Component) ID() string {
	return c.id
}

// Name returns the definition name.
func (c *Component) Name() string {
	return c.opts.Definition.Name
}

// Data returns the component's data object.
func (c *Component) Data() *reactive.Object {
	return c.data
}

// Scope returns the root scope layer.
func (c *Component) Scope() *scope.Layer {
	return c.root
}

// Host returns the element the component renders into.
func (c *Component) Host() *html.Node {
	return c.host
}

// Anchor returns the marker the content renders after, or nil before
// InitializeBuild.
func (c *Component) Anchor() *html.Node {
	if c.build == nil {
		return nil
	}
	return c.build.Anchor()
}

// Builder returns the root Static builder.
func (c *Component) Builder() *builder.Static {
	return c.build
}

// Broken returns the error that broke the component, or nil.
func (c *Component) Broken() error {
	return c.broken
}

// Settled returns a future that resolves once pending updates are
// committed.
func (c *Component) Settled() *scheduler.Settle {
	if c.broken != nil {
		return scheduler.Resolved(c.brokenErr())
	}
	if c.sched == nil {
		return scheduler.Resolved(nil)
	}
	return c.sched.Settled()
}

// Scheduler returns the component's update scheduler, nil before
// InitializeBuild.
func (c *Component) Scheduler() *scheduler.Scheduler {
	return c.sched
}

// Ref returns the element recorded under a `#name` reference.
func (c *Component) Ref(name string) (*html.Node, bool) {
	n, ok := c.refs[name]
	return n, ok
}

// SetRef implements registry.Host. A nil node drops the reference.
func (c *Component) SetRef(name string, n *html.Node) {
	if n == nil {
		delete(c.refs, name)
		return
	}
	c.refs[name] = n
}

// ChildData implements registry.Host.
func (c *Component) ChildData(n *html.Node) (*reactive.Object, bool) {
	child, ok := c.children[n]
	if !ok {
		return nil, false
	}
	return child.data, true
}

// Children returns the directly nested components in document order.
func (c *Component) Children() []*Component {
	isChild := func(n *html.Node) bool { _, ok := c.children[n]; return ok }
	hosts := dom.FindAll(c.host, isChild, isChild)
	out := make([]*Component, 0, len(hosts))
	for _, n := range hosts {
		out = append(out, c.children[n])
	}
	return out
}

// InitializeBuild renders the template and starts listening for data
// changes.
func (c *Component) InitializeBuild(ctx context.Context) error {
	if c.broken != nil {
		return c.brokenErr()
	}
	if c.initialized {
		return fault.Contract("component.InitializeBuild", "component %s already initialized", c.id)
	}
	ctx = ctxlog.With(ctx, "component", c.Name(), "id", c.id)
	logger := ctxlog.FromContext(ctx)

	env := builder.Env{
		Registry:  c.opts.Registry,
		Evaluator: c.opts.Evaluator,
		Host:      c,
		Mounter:   c,
	}
	c.build = builder.NewStatic(env, c.opts.Definition.Template.Children, c.root, false)
	c.host.AppendChild(c.build.Anchor())
	c.initialized = true

	if err := c.build.Build(ctx); err != nil {
		return c.fail(err)
	}

	c.sched = scheduler.New(ctx, c.opts.Frames, func(err error) { c.fail(err) })
	c.sched.Listen(func(ctx context.Context) error {
		if c.broken != nil {
			return nil
		}
		_, err := c.update(ctx)
		return err
	})
	c.unsubscribe = c.data.Subscribe(func(ch reactive.Change) {
		if c.broken != nil || c.sched == nil {
			return
		}
		_ = c.sched.Dispatch(scheduler.Reason{Component: c.id, Property: ch.Key})
	})

	logger.Info("Component initialized.", "passes", c.build.Passes())
	return nil
}

// UpdateBuild runs an update pass immediately and reports whether anything
// changed.
func (c *Component) UpdateBuild(ctx context.Context) (bool, error) {
	if c.broken != nil {
		return false, c.brokenErr()
	}
	if !c.initialized {
		return false, fault.Resolution("component.UpdateBuild", "component %s is not initialized", c.id)
	}
	changed, err := c.update(ctxlog.With(ctx, "component", c.Name(), "id", c.id))
	if err != nil {
		return changed, c.fail(err)
	}
	return changed, nil
}

func (c *Component) update(ctx context.Context) (bool, error) {
	changed, err := c.build.Update(ctx)
	if err != nil {
		return changed, err
	}
	ctxlog.FromContext(ctx).Debug("Component updated.", "changed", changed)
	return changed, nil
}

// DeleteBuild tears the component down bottom-up and clears a broken
// state. The component can be initialized again afterwards.
func (c *Component) DeleteBuild(ctx context.Context) error {
	logger := ctxlog.FromContext(c.ctx)

	if c.sched != nil {
		c.sched.Stop()
	}
	if c.build != nil {
		c.build.Teardown()
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}

	c.build = nil
	c.sched = nil
	c.refs = make(map[string]*html.Node)
	c.children = make(map[*html.Node]*Component)
	c.initialized = false
	c.broken = nil

	if c.onDestroy != nil {
		c.onDestroy()
	}
	logger.Info("Component deleted.")
	return nil
}

func (c *Component) fail(err error) error {
	c.broken = err
	ctxlog.FromContext(c.ctx).Error("Component failed.", "error", err)
	if c.opts.Report != nil {
		c.opts.Report(c, err)
	}
	return err
}

func (c *Component) brokenErr() error {
	return fmt.Errorf("%w: %w", ErrBroken, c.broken)
}

// Logger returns the component's logger.
func (c *Component) Logger() *slog.Logger {
	return ctxlog.FromContext(c.ctx)
}
