package scope

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/weavego/internal/reactive"
)

func TestLayer_GetWalksChainThenData(t *testing.T) {
	data := reactive.New(map[string]cty.Value{"title": cty.StringVal("root")})
	root := NewRoot(data)
	child := root.Child()
	child.Set("item", cty.NumberIntVal(7), false)
	grandchild := child.Child()

	v, ok := grandchild.Get("item")
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.NumberIntVal(7)))

	v, ok = grandchild.Get("title")
	require.True(t, ok)
	assert.Equal(t, "root", v.AsString())

	_, ok = root.Get("item")
	assert.False(t, ok, "parents never see child bindings")
}

func TestLayer_SetWriteToRootNotifies(t *testing.T) {
	data := reactive.New(nil)
	var notified []string
	data.Subscribe(func(c reactive.Change) { notified = append(notified, c.Key) })

	child := NewRoot(data).Child()
	child.Set("count", cty.NumberIntVal(1), true)

	assert.Equal(t, []string{"count"}, notified)
	assert.Empty(t, child.Local())
	v, ok := data.Get("count")
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.NumberIntVal(1)))
}

func TestLayer_Equal(t *testing.T) {
	data := reactive.New(nil)
	root := NewRoot(data)

	t.Run("same bindings in any order are equal", func(t *testing.T) {
		a := root.Child()
		a.Set("x", cty.NumberIntVal(1), false)
		a.Set("y", cty.StringVal("b"), false)

		b := root.Child()
		b.Set("y", cty.StringVal("b"), false)
		b.Set("x", cty.NumberIntVal(1), false)

		assert.True(t, a.Equal(b))
		assert.True(t, b.Equal(a))
	})

	t.Run("a changed value makes them unequal", func(t *testing.T) {
		a := root.With(map[string]cty.Value{"x": cty.NumberIntVal(1)})
		b := root.With(map[string]cty.Value{"x": cty.NumberIntVal(2)})
		assert.False(t, a.Equal(b))
	})

	t.Run("asymmetric binding sets are unequal in both directions", func(t *testing.T) {
		a := root.With(map[string]cty.Value{"x": cty.NumberIntVal(1)})
		b := root.With(map[string]cty.Value{"x": cty.NumberIntVal(1), "i": cty.NumberIntVal(0)})
		assert.False(t, a.Equal(b))
		assert.False(t, b.Equal(a))
	})

	t.Run("different data objects are unequal", func(t *testing.T) {
		a := NewRoot(reactive.New(nil))
		b := NewRoot(reactive.New(nil))
		assert.False(t, a.Equal(b))
	})

	t.Run("bindings are compared through the whole chain", func(t *testing.T) {
		outerA := root.With(map[string]cty.Value{"row": cty.NumberIntVal(1)})
		outerB := root.With(map[string]cty.Value{"row": cty.NumberIntVal(2)})
		assert.False(t, outerA.Child().Equal(outerB.Child()))
		assert.True(t, outerA.Child().Equal(outerA.Child()))
	})
}

func TestLayer_EvalContextShadowsOuterBindings(t *testing.T) {
	data := reactive.New(map[string]cty.Value{"x": cty.StringVal("data")})
	inner := NewRoot(data).
		With(map[string]cty.Value{"x": cty.StringVal("outer")}).
		With(map[string]cty.Value{"x": cty.StringVal("inner")})

	expr, diags := hclsyntax.ParseExpression([]byte("x"), "test", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors())

	v, diags := expr.Value(inner.EvalContext(nil))
	require.False(t, diags.HasErrors(), diags.Error())
	assert.Equal(t, "inner", v.AsString())

	v, diags = expr.Value(inner.Parent().EvalContext(nil))
	require.False(t, diags.HasErrors(), diags.Error())
	assert.Equal(t, "outer", v.AsString())
}
