package let_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/weavego/internal/testutil"
	"github.com/vk/weavego/modules/let"
)

func TestLet_BindsInElementScope(t *testing.T) {
	// --- Arrange ---
	mc := testutil.ModuleContext(t, "let-total", "a + b", map[string]any{"a": 1, "b": 2}, "total")
	m, err := let.New(mc)
	require.NoError(t, err)

	// --- Act ---
	_, err = m.Process(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	v, ok := mc.Scope.Get("total")
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.NumberIntVal(3)))
	_, inRoot := mc.Scope.Data().Get("total")
	assert.False(t, inRoot, "let must not write to the data object")
}

func TestLet_UpdateRebindsOnChange(t *testing.T) {
	// --- Arrange ---
	mc := testutil.ModuleContext(t, "let-twice", "a * 2", map[string]any{"a": 1}, "twice")
	m, err := let.New(mc)
	require.NoError(t, err)
	_, err = m.Process(context.Background())
	require.NoError(t, err)

	// --- Act ---
	unchanged, err := m.Update(context.Background())
	require.NoError(t, err)
	mc.Scope.Data().Set("a", cty.NumberIntVal(4))
	changed, err := m.Update(context.Background())
	require.NoError(t, err)

	// --- Assert ---
	assert.False(t, unchanged)
	assert.True(t, changed)
	v, _ := mc.Scope.Get("twice")
	assert.True(t, v.RawEquals(cty.NumberIntVal(8)))
}
