package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/weavego/internal/app"
	"github.com/vk/weavego/internal/hclconfig"
	"github.com/vk/weavego/internal/registry"
)

// Result holds the outcome of one integration run.
type Result struct {
	App *app.App
	Err error
	// Output is everything the app wrote: log lines and rendered markup.
	Output string
}

// Rendered returns the markup printed under "# label", or "" when the run
// never printed that label.
func (r *Result) Rendered(label string) string {
	lines := strings.Split(r.Output, "\n")
	for i, line := range lines {
		if line == "# "+label && i+1 < len(lines) {
			return lines[i+1]
		}
	}
	return ""
}

// RunIntegrationTest writes files into a temporary directory, loads it as
// the configuration path and runs the app with the given modules on top of
// the built-in set.
func RunIntegrationTest(t *testing.T, files map[string]string, modules ...registry.Module) *Result {
	t.Helper()
	return RunIntegrationTestWith(t, files, app.Config{}, modules...)
}

// RunIntegrationTestWith is RunIntegrationTest with explicit app settings.
// An empty ConfigPath defaults to the temporary directory; a relative one
// is resolved against it.
func RunIntegrationTestWith(t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *Result {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	cfg.ConfigPath = filepath.Join(root, cfg.ConfigPath)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	if len(modules) > 0 {
		modules = append(app.CoreModules(), modules...)
	}

	out := &SafeBuffer{}
	result := &Result{}
	t.Cleanup(func() {
		if os.Getenv("WEAVEGO_TEST_LOGS") == "true" {
			t.Logf("--- Full Output for %s ---\n%s", t.Name(), out.String())
		}
	})

	result.App, result.Err = app.NewApp(out, appConfig, hclconfig.NewLoader(), modules...)
	if result.Err == nil {
		result.Err = result.App.Run(context.Background())
	}
	result.Output = out.String()
	return result
}
