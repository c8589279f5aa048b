package bind_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/reactive"
	"github.com/vk/weavego/internal/testutil"
	"github.com/vk/weavego/modules/bind"
)

func TestBinding_AttributeValues(t *testing.T) {
	testCases := []struct {
		name    string
		value   any
		want    string
		present bool
	}{
		{name: "string", value: "x", want: "x", present: true},
		{name: "number", value: 1.5, want: "1.5", present: true},
		{name: "true sets empty", value: true, want: "", present: true},
		{name: "false removes", value: false},
		{name: "null removes", value: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			mc := testutil.ModuleContext(t, "[title]", "v", map[string]any{"v": tc.value}, "title")
			dom.SetAttr(mc.Node, "title", "stale")
			m, err := bind.New(mc)
			require.NoError(t, err)

			// --- Act ---
			_, err = m.Process(context.Background())

			// --- Assert ---
			require.NoError(t, err)
			got, ok := dom.GetAttr(mc.Node, "title")
			assert.Equal(t, tc.present, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBinding_UpdateOnlyOnChange(t *testing.T) {
	// --- Arrange ---
	mc := testutil.ModuleContext(t, "[title]", "v", map[string]any{"v": "a"}, "title")
	m, err := bind.New(mc)
	require.NoError(t, err)
	_, err = m.Process(context.Background())
	require.NoError(t, err)

	// --- Act & Assert ---
	changed, err := m.Update(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)

	mc.Scope.Data().Set("v", cty.StringVal("b"))
	changed, err = m.Update(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)
	got, _ := dom.GetAttr(mc.Node, "title")
	assert.Equal(t, "b", got)
}

func TestBinding_WritesNestedComponentData(t *testing.T) {
	// --- Arrange ---
	mc := testutil.ModuleContext(t, "[items]", "list", map[string]any{"list": []any{"a"}}, "items")
	host := testutil.NewFakeHost()
	child := reactive.New(nil)
	host.Children[mc.Node] = child
	mc.Host = host
	m, err := bind.New(mc)
	require.NoError(t, err)

	// --- Act ---
	_, err = m.Process(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	_, isAttr := dom.GetAttr(mc.Node, "items")
	assert.False(t, isAttr)
	v, ok := child.Get("items")
	require.True(t, ok)
	assert.Equal(t, 1, v.LengthInt())
}
