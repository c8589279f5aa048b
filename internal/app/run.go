package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/component"
	"github.com/vk/weavego/internal/config"
	"github.com/vk/weavego/internal/ctxlog"
	"github.com/vk/weavego/internal/dom"
)

// settleTimeout bounds the wait for one step's updates to commit.
const settleTimeout = 5 * time.Second

// Run mounts the configured component into an empty document body, prints
// the rendered markup, then applies every step in order and prints the
// markup again once the step's updates have settled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	name := a.config.Component
	if name == "" {
		if len(a.model.Components) == 0 {
			return fmt.Errorf("no component defined in %s", a.config.ConfigPath)
		}
		name = a.model.Components[0].Name
	}

	a.Start(ctx)
	defer a.Close()

	host := dom.NewRoot("body")
	var (
		root *component.Component
		err  error
	)
	a.Do(func() {
		root, err = a.Mount(ctx, name, host)
	})
	if err != nil {
		return fmt.Errorf("failed to mount component '%s': %w", name, err)
	}
	a.logger.Info("Component mounted.", "component", name, "id", root.ID())
	if err := a.settle(ctx, root); err != nil {
		return fmt.Errorf("component '%s' did not settle after mount: %w", name, err)
	}
	a.print(host, "mount")

	for _, step := range a.model.Steps {
		if err := a.applyStep(ctx, root, step); err != nil {
			return fmt.Errorf("step '%s' failed: %w", step.Name, err)
		}
		a.print(host, step.Name)
	}

	a.logger.Debug("App.Run method finished.", "steps", len(a.model.Steps))
	return nil
}

func (a *App) applyStep(ctx context.Context, root *component.Component, step *config.Step) error {
	if step.Component != root.Name() {
		return fmt.Errorf("targets component '%s', but '%s' is mounted", step.Component, root.Name())
	}

	keys := make([]string, 0, len(step.Set))
	for k := range step.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	a.Do(func() {
		for _, k := range keys {
			root.Data().Set(k, step.Set[k])
		}
	})
	a.logger.Debug("Step applied.", "step", step.Name, "properties", keys)
	return a.settle(ctx, root)
}

func (a *App) settle(ctx context.Context, root *component.Component) error {
	waitCtx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()
	return a.WaitSettled(waitCtx, root)
}

// print writes the host's rendered children, anchors omitted.
func (a *App) print(host *html.Node, label string) {
	var markup string
	a.Do(func() {
		markup = dom.Render(host, false)
	})
	fmt.Fprintf(a.outW, "# %s\n%s\n", label, markup)
}
