package testutil

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/app"
	"github.com/vk/weavego/internal/component"
	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/registry"
	"github.com/vk/weavego/internal/scheduler"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// NewApp creates an app with manual frames and debug logging captured in
// the returned buffer. With no modules the built-in set is registered. Set
// WEAVEGO_TEST_LOGS=true to print the captured logs after the test.
func NewApp(t *testing.T, modules ...registry.Module) (*app.App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	cfg := &app.Config{LogLevel: "debug", LogFormat: "text"}
	testApp, err := app.NewApp(logBuffer, cfg, nil, modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		testApp.Close()
		if os.Getenv("WEAVEGO_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})
	return testApp, logBuffer
}

// Mount defines markup as component name, mounts it into a fresh host
// element and requires the build to succeed.
func Mount(t *testing.T, a *app.App, name, markup string, data map[string]any) (*component.Component, *html.Node) {
	t.Helper()

	c, host, err := TryMount(t, a, name, markup, data)
	require.NoError(t, err)
	return c, host
}

// TryMount is Mount without the success requirement.
func TryMount(t *testing.T, a *app.App, name, markup string, data map[string]any) (*component.Component, *html.Node, error) {
	t.Helper()

	values, err := ctyMap(data)
	require.NoError(t, err)
	require.NoError(t, a.Define(name, markup, values))

	host := dom.NewRoot("body")
	c, err := a.Mount(context.Background(), name, host)
	return c, host, err
}

// Manual returns the app's manual frame source.
func Manual(t *testing.T, a *app.App) *scheduler.Manual {
	t.Helper()

	m, ok := a.Frames().(*scheduler.Manual)
	require.True(t, ok, "app does not use manual frames")
	return m
}
