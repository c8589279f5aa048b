package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zclconf/go-cty/cty"
	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/component"
	"github.com/vk/weavego/internal/config"
	"github.com/vk/weavego/internal/ctxlog"
	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/registry"
	"github.com/vk/weavego/internal/scheduler"
	"github.com/vk/weavego/internal/template"
)

// errorBuffer is the capacity of the error channel. Reports beyond it are
// logged and dropped.
const errorBuffer = 64

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	ctx       context.Context
	config    *Config
	model     *config.Model
	registry  *registry.Registry
	evaluator *expr.Evaluator
	frames    scheduler.FrameSource
	loop      *scheduler.Loop
	started   atomic.Bool

	mu      sync.Mutex
	defs    map[string]*component.Definition
	mounted []*component.Component
	errs    chan error
}

// NewApp is the constructor for the main application. It loads the
// configuration through loader (which may be nil), creates the app's own
// logger and registry, and defines every configured component. Modules
// default to the built-in set.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	model := &config.Model{}
	if loader != nil && appConfig.ConfigPath != "" {
		bootstrap := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
		loaded, err := loader.Load(ctxlog.WithLogger(context.Background(), bootstrap), appConfig.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		model = loaded
	}

	level := firstNonEmpty(appConfig.LogLevel, model.Settings.LogLevel)
	format := firstNonEmpty(appConfig.LogFormat, model.Settings.LogFormat)
	logger := newLogger(level, format, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.Load(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "descriptors", reg.Len())

	a := &App{
		outW:      outW,
		logger:    logger,
		ctx:       ctx,
		config:    appConfig,
		model:     model,
		registry:  reg,
		evaluator: expr.NewEvaluator(appFunctions()),
		defs:      make(map[string]*component.Definition),
		errs:      make(chan error, errorBuffer),
	}

	interval := appConfig.FrameInterval
	if interval == 0 {
		interval = model.Settings.FrameInterval
	}
	if interval > 0 {
		a.loop = scheduler.NewLoop(interval)
		a.frames = a.loop
		logger.Debug("Using host loop frames.", "interval", interval)
	} else {
		a.frames = scheduler.NewManual()
		logger.Debug("Using manual frames.")
	}

	for _, c := range model.Components {
		if err := a.Define(c.Name, c.Template, c.Data); err != nil {
			return nil, err
		}
	}
	if err := a.checkNesting(); err != nil {
		return nil, err
	}
	logger.Debug("Component definitions loaded.", "count", len(model.Components))
	return a, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Define parses markup and registers it as the component tag name. Tag
// names are case-insensitive.
func (a *App) Define(name, markup string, data map[string]cty.Value) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("component name cannot be empty")
	}
	tmpl, err := template.Parse(markup)
	if err != nil {
		return fmt.Errorf("failed to parse template of component '%s': %w", name, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.defs[name]; exists {
		return fmt.Errorf("component '%s' is already defined", name)
	}
	a.defs[name] = &component.Definition{Name: name, Template: tmpl, Data: data}
	a.logger.Debug("Component defined.", "component", name)
	return nil
}

// Lookup implements component.Definitions.
func (a *App) Lookup(tag string) (*component.Definition, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	def, ok := a.defs[strings.ToLower(tag)]
	return def, ok
}

// Mount creates a component of the named definition inside host and builds
// it. With a loop frame source, Mount must run on the loop (see Do).
func (a *App) Mount(ctx context.Context, name string, host *html.Node) (*component.Component, error) {
	def, ok := a.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("component '%s' is not defined", name)
	}
	if err := a.checkNesting(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = a.ctx
	}
	ctx = ctxlog.WithLogger(ctx, a.logger)

	c := component.New(ctx, component.Options{
		Definition:  def,
		Host:        host,
		Registry:    a.registry,
		Evaluator:   a.evaluator,
		Frames:      a.frames,
		Definitions: a,
		Report:      a.report,
	})
	if err := c.InitializeBuild(ctx); err != nil {
		return c, err
	}

	a.mu.Lock()
	a.mounted = append(a.mounted, c)
	a.mu.Unlock()
	return c, nil
}

// report is the component error boundary: it publishes err on the error
// channel without blocking.
func (a *App) report(c *component.Component, err error) {
	wrapped := fmt.Errorf("component '%s' (%s): %w", c.Name(), c.ID(), err)
	a.logger.Error("Component error reported.", "component", c.Name(), "id", c.ID(), "error", err)
	select {
	case a.errs <- wrapped:
	default:
		a.logger.Warn("Error channel full, dropping report.", "component", c.Name(), "error", err)
	}
}

// Errors returns the channel every component error is reported to.
func (a *App) Errors() <-chan error {
	return a.errs
}

// Start starts the host loop, if the app uses one.
func (a *App) Start(ctx context.Context) {
	if a.loop != nil && a.started.CompareAndSwap(false, true) {
		a.loop.Start(ctx)
	}
}

// Do runs fn on the frame source's thread and waits for it. Before Start
// there is no loop goroutine yet and fn runs inline.
func (a *App) Do(fn func()) {
	if a.loop != nil && !a.started.Load() {
		fn()
		return
	}
	a.frames.Do(fn)
}

// Flush fires pending frames when the app uses manual frames. It returns
// the number of frames fired.
func (a *App) Flush() int {
	if m, ok := a.frames.(*scheduler.Manual); ok {
		return m.Flush()
	}
	return 0
}

// WaitSettled waits until neither c nor any component nested in it has
// pending updates. With manual frames it flushes them first. A commit of
// one component can schedule another, so the tree is polled until a round
// finds every scheduler idle.
func (a *App) WaitSettled(ctx context.Context, c *component.Component) error {
	for {
		var (
			settles []*scheduler.Settle
			idle    = true
		)
		a.Do(func() {
			settles = collectSettles(c, nil)
			for _, s := range settles {
				select {
				case <-s.Done():
				default:
					idle = false
				}
			}
		})
		a.Flush()
		for _, s := range settles {
			if err := s.Wait(ctx); err != nil {
				return err
			}
		}
		if idle {
			return nil
		}
	}
}

func collectSettles(c *component.Component, out []*scheduler.Settle) []*scheduler.Settle {
	out = append(out, c.Settled())
	for _, child := range c.Children() {
		out = collectSettles(child, out)
	}
	return out
}

// Close tears down every mounted component and stops the host loop.
func (a *App) Close() {
	a.mu.Lock()
	mounted := a.mounted
	a.mounted = nil
	a.mu.Unlock()

	a.Do(func() {
		for i := len(mounted) - 1; i >= 0; i-- {
			_ = mounted[i].DeleteBuild(a.ctx)
		}
	})
	if a.loop != nil && a.started.Load() {
		a.loop.Stop()
	}
	a.logger.Debug("App closed.", "components", len(mounted))
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Evaluator returns the shared expression evaluator.
func (a *App) Evaluator() *expr.Evaluator {
	return a.evaluator
}

// Frames returns the frame source every component of the app shares.
func (a *App) Frames() scheduler.FrameSource {
	return a.frames
}

// Model returns the loaded configuration model.
func (a *App) Model() *config.Model {
	return a.model
}

// Logger returns the app's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Context returns the app's base context, carrying its logger.
func (a *App) Context() context.Context {
	return a.ctx
}

var _ component.Definitions = (*App)(nil)
