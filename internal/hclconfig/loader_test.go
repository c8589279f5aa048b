package hclconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestLoader_ParsesAllBlocks(t *testing.T) {
	// --- Arrange ---
	dir := writeFiles(t, map[string]string{
		"main.hcl": `
			settings {
			  log_level      = "debug"
			  frame_interval = "16ms"
			}

			component "todo-list" {
			  template = "<ul><li *repeat=\"item of list\">{{item}}</li></ul>"
			  data     = { list = [1, 2, 3], title = upper("todo") }
			}

			step "remove-middle" {
			  component = "todo-list"
			  set       = { list = [1, 3] }
			}
		`,
	})

	// --- Act ---
	model, err := NewLoader().Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "debug", model.Settings.LogLevel)
	require.Equal(t, 16*time.Millisecond, model.Settings.FrameInterval)

	require.Len(t, model.Components, 1)
	c := model.Components[0]
	require.Equal(t, "todo-list", c.Name)
	require.Contains(t, c.Template, `*repeat="item of list"`)
	require.True(t, c.Data["title"].RawEquals(cty.StringVal("TODO")))
	require.Equal(t, 3, c.Data["list"].LengthInt())

	require.Len(t, model.Steps, 1)
	require.Equal(t, "todo-list", model.Steps[0].Component)
	require.Equal(t, 2, model.Steps[0].Set["list"].LengthInt())
}

func TestLoader_TemplateAndDataFiles(t *testing.T) {
	// --- Arrange ---
	dir := writeFiles(t, map[string]string{
		"app/main.hcl": `
			component "card" {
			  template_file = "card.html"
			  data_file     = "card.yaml"
			  data          = { title = "inline wins" }
			}
		`,
		"app/card.html": `<div class="card">{{title}}: {{body}}</div>`,
		"app/card.yaml": "title: from file\nbody: hello\ntags:\n  - a\n  - b\n",
	})

	// --- Act ---
	model, err := NewLoader().Load(context.Background(), filepath.Join(dir, "app", "main.hcl"))

	// --- Assert ---
	require.NoError(t, err)
	c, ok := model.Component("card")
	require.True(t, ok)
	require.Equal(t, `<div class="card">{{title}}: {{body}}</div>`, c.Template)
	require.True(t, c.Data["title"].RawEquals(cty.StringVal("inline wins")))
	require.True(t, c.Data["body"].RawEquals(cty.StringVal("hello")))
	require.Equal(t, 2, c.Data["tags"].LengthInt())
}

func TestLoader_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		hcl     string
		wantErr string
	}{
		{
			name:    "syntax error",
			hcl:     `component "x" {`,
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "missing template",
			hcl:     `component "x" {}`,
			wantErr: "needs template or template_file",
		},
		{
			name:    "both templates",
			hcl:     `component "x" { template = "<p></p>" ` + "\n" + ` template_file = "x.html" }`,
			wantErr: "sets both template and template_file",
		},
		{
			name:    "data is not an object",
			hcl:     `component "x" { template = "<p></p>" ` + "\n" + ` data = [1] }`,
			wantErr: "expected an object",
		},
		{
			name:    "bad frame interval",
			hcl:     `settings { frame_interval = "soon" }`,
			wantErr: "invalid frame_interval",
		},
		{
			name:    "duplicate component",
			hcl:     `component "x" { template = "<p></p>" }` + "\n" + `component "x" { template = "<p></p>" }`,
			wantErr: "already defined",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			dir := writeFiles(t, map[string]string{"main.hcl": tc.hcl})

			// --- Act ---
			_, err := NewLoader().Load(context.Background(), dir)

			// --- Assert ---
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
