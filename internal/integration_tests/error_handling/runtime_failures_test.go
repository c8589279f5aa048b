package integration_tests

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/weavego/internal/fault"
	"github.com/vk/weavego/internal/registry"
	"github.com/vk/weavego/internal/testutil"
)

// echo increments the root property `out` on every update, so every update
// schedules the next one.
type echo struct {
	mc *registry.Context
}

func (e *echo) Process(context.Context) (bool, error) { return false, nil }

func (e *echo) Update(context.Context) (bool, error) {
	out, _ := e.mc.Scope.Get("out")
	if out.IsNull() {
		out = cty.NumberIntVal(0)
	}
	e.mc.Scope.Set("out", out.Add(cty.NumberIntVal(1)), true)
	return true, nil
}

func (e *echo) Cleanup() {}

var echoModule = &testutil.SimpleModule{Descriptors: []registry.Descriptor{
	&registry.StaticDescriptor{
		Name:    "echo",
		Pattern: regexp.MustCompile(`^echo$`),
		Access:  registry.Read,
		New: func(mc *registry.Context) (registry.StaticModule, error) {
			return &echo{mc: mc}, nil
		},
	},
}}

// TestErrorHandling_UpdateLoopFailsStep verifies that a self-triggering
// update is stopped, fails the step and reaches the error channel.
func TestErrorHandling_UpdateLoopFailsStep(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"main.hcl": `
			component "spin" {
			  template = "<p echo>{{out}}</p>"
			  data     = { out = 0 }
			}

			step "kick" {
			  component = "spin"
			  set       = { in = 1 }
			}
		`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, echoModule)

	// --- Assert ---
	require.Error(t, result.Err)
	require.True(t, errors.Is(result.Err, fault.ErrUpdateLoop), "got %v", result.Err)
	require.Contains(t, result.Err.Error(), "step 'kick' failed")
	require.Equal(t, "<p>0</p>", result.Rendered("mount"))
	require.Empty(t, result.Rendered("kick"))

	select {
	case reported := <-result.App.Errors():
		require.True(t, errors.Is(reported, fault.ErrUpdateLoop))
		require.Contains(t, reported.Error(), "component 'spin'")
	default:
		t.Fatal("the loop was not reported on the error channel")
	}
}

// TestErrorHandling_BrokenBuildFailsMount verifies that an expression
// error during the first build breaks the component and stops the run.
func TestErrorHandling_BrokenBuildFailsMount(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"main.hcl": `
			component "bad" {
			  template = "<p>{{ nope(1) }}</p>"
			}
		`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "failed to mount component 'bad'")
	require.Contains(t, result.Output, "Component failed.")
	require.Len(t, result.App.Errors(), 1)
}

// TestErrorHandling_BrokenUpdateFailsStep verifies that a component whose
// update fails stays broken for the rest of the run.
func TestErrorHandling_BrokenUpdateFailsStep(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"main.hcl": `
			component "ratio" {
			  template = "<p>{{ total / parts }}</p>"
			  data     = { total = 10, parts = 2 }
			}

			step "break" {
			  component = "ratio"
			  set       = { parts = "many" }
			}
		`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "step 'break' failed")
	require.Equal(t, "<p>5</p>", result.Rendered("mount"))
	require.Empty(t, result.Rendered("break"))
	require.Len(t, result.App.Errors(), 1)
}

// TestErrorHandling_StepTargetsMountedComponent verifies that a step
// naming another component is rejected.
func TestErrorHandling_StepTargetsMountedComponent(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"main.hcl": `
			component "a" {
			  template = "<p>a</p>"
			}

			component "b" {
			  template = "<p>b</p>"
			}

			step "poke-b" {
			  component = "b"
			  set       = { x = 1 }
			}
		`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "targets component 'b', but 'a' is mounted")
}
