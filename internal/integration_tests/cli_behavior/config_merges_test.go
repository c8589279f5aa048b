package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/weavego/internal/app"
	"github.com/vk/weavego/internal/testutil"
)

// TestCLI_MergesHCL_FromDirectoryPath validates that the loader correctly
// discovers and merges all HCL files from a given directory path.
func TestCLI_MergesHCL_FromDirectoryPath(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Files are read in lexical order, so the component defined in a.hcl
	// is the default one.
	files := map[string]string{
		"site/a.hcl": `
			component "greeting" {
			  template = "<p>Hello, {{name}}</p>"
			  data     = { name = "world" }
			}
		`,
		"site/b.hcl": `
			step "rename" {
			  component = "greeting"
			  set       = { name = "gopher" }
			}
		`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTestWith(t, files, app.Config{ConfigPath: "site"})

	// --- Assert ---
	require.NoError(t, result.Err, "app.Run() returned an unexpected error")
	require.Equal(t, "<p>Hello, world</p>", result.Rendered("mount"))
	require.Equal(t, "<p>Hello, gopher</p>", result.Rendered("rename"))
	require.Len(t, result.App.Model().Components, 1)
	require.Len(t, result.App.Model().Steps, 1)
}

// TestCLI_SelectsComponent validates that the component option picks the
// mounted component instead of the first one defined.
func TestCLI_SelectsComponent(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"main.hcl": `
			component "first" {
			  template = "<p>first</p>"
			}

			component "second" {
			  template = "<p>second</p>"
			}
		`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTestWith(t, files, app.Config{Component: "second"})

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Equal(t, "<p>second</p>", result.Rendered("mount"))
}

// TestCLI_SettingsBlockConfiguresApp validates that the settings block is
// honored when no command-line option overrides it.
func TestCLI_SettingsBlockConfiguresApp(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"main.hcl": `
			settings {
			  log_format     = "json"
			  frame_interval = "2ms"
			}

			component "clock" {
			  template = "<time>{{tick}}</time>"
			  data     = { tick = 0 }
			}

			step "advance" {
			  component = "clock"
			  set       = { tick = 1 }
			}
		`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTestWith(t, files, app.Config{})

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Equal(t, "<time>1</time>", result.Rendered("advance"))
	require.Contains(t, result.Output, `"msg":"Using host loop frames."`)
}
