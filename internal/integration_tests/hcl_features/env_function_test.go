package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/weavego/internal/testutil"
)

// TestHCL_EnvFunction verifies that templates can read process environment
// variables and that unset ones render as empty.
func TestHCL_EnvFunction(t *testing.T) {
	// --- Arrange ---
	t.Setenv("WEAVEGO_GREETING", "howdy")
	files := map[string]string{
		"main.hcl": `
			component "env" {
			  template = "<p>{{env(\"WEAVEGO_GREETING\")}}|{{env(\"WEAVEGO_UNSET_FOR_TEST\")}}</p>"
			}
		`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Equal(t, "<p>howdy|</p>", result.Rendered("mount"))
}
