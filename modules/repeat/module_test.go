package repeat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/weavego/internal/testutil"
	"github.com/vk/weavego/modules/repeat"
)

func TestRepeat_Clauses(t *testing.T) {
	testCases := []struct {
		name    string
		clause  string
		wantErr bool
	}{
		{name: "item only", clause: "item of list"},
		{name: "item and index", clause: "item, i of list"},
		{name: "extra spaces", clause: "  item ,i   of   list  "},
		{name: "missing of", clause: "item in list", wantErr: true},
		{name: "missing list", clause: "item of ", wantErr: true},
		{name: "bad expression", clause: "item of list[", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mc := testutil.ModuleContext(t, "*repeat", tc.clause, nil)

			_, err := repeat.New(mc)

			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRepeat_ObjectIndexIsKey(t *testing.T) {
	// --- Arrange ---
	mc := testutil.ModuleContext(t, "*repeat", "v, k of scores", map[string]any{
		"scores": map[string]any{"bob": 2, "ann": 1},
	})
	m, err := repeat.New(mc)
	require.NoError(t, err)

	// --- Act ---
	items, err := m.Process(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, items, 2)
	var keys []string
	for _, item := range items {
		k, ok := item.Scope.Get("k")
		require.True(t, ok)
		keys = append(keys, k.AsString())
		assert.Same(t, mc.Template, item.Template)
	}
	assert.Equal(t, []string{"ann", "bob"}, keys)
}

func TestRepeat_NullYieldsNothingAndScalarFails(t *testing.T) {
	mc := testutil.ModuleContext(t, "*repeat", "x of missing", nil)
	m, err := repeat.New(mc)
	require.NoError(t, err)
	items, err := m.Process(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	mc = testutil.ModuleContext(t, "*repeat", "x of n", map[string]any{"n": 3})
	m, err = repeat.New(mc)
	require.NoError(t, err)
	_, err = m.Process(context.Background())
	assert.ErrorContains(t, err, "cannot repeat over number")
}

func TestRepeat_UpdateReportsListChange(t *testing.T) {
	// --- Arrange ---
	mc := testutil.ModuleContext(t, "*repeat", "x of list", map[string]any{"list": []any{1}})
	m, err := repeat.New(mc)
	require.NoError(t, err)
	_, err = m.Process(context.Background())
	require.NoError(t, err)

	// --- Act & Assert ---
	changed, err := m.Update(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)

	mc.Scope.Data().Set("list", cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)}))
	changed, err = m.Update(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)
}
