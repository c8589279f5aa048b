package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestObject_SetNotifiesOnlyOnChange(t *testing.T) {
	o := New(map[string]cty.Value{"n": cty.NumberIntVal(1)})

	var changes []Change
	unsubscribe := o.Subscribe(func(c Change) { changes = append(changes, c) })

	o.Set("n", cty.NumberIntVal(1))
	require.Empty(t, changes, "writing an identical value must not notify")

	o.Set("n", cty.NumberIntVal(2))
	require.Len(t, changes, 1)
	assert.Equal(t, "n", changes[0].Key)
	assert.True(t, changes[0].Old.RawEquals(cty.NumberIntVal(1)))
	assert.True(t, changes[0].New.RawEquals(cty.NumberIntVal(2)))

	o.Set("fresh", cty.StringVal("x"))
	require.Len(t, changes, 2)
	assert.True(t, changes[1].Old.RawEquals(Absent))

	unsubscribe()
	unsubscribe()
	o.Set("n", cty.NumberIntVal(3))
	assert.Len(t, changes, 2, "no notifications after unsubscribe")
	assert.Equal(t, 0, o.Subscribers())
}

func TestObject_Delete(t *testing.T) {
	o := New(map[string]cty.Value{"a": cty.True})
	var got []Change
	o.Subscribe(func(c Change) { got = append(got, c) })

	o.Delete("missing")
	require.Empty(t, got)

	o.Delete("a")
	require.Len(t, got, 1)
	_, ok := o.Get("a")
	assert.False(t, ok)
	assert.Empty(t, o.Keys())
}

func TestObject_SubscribersRunInRegistrationOrder(t *testing.T) {
	o := New(nil)
	var order []int
	o.Subscribe(func(Change) { order = append(order, 1) })
	o.Subscribe(func(Change) { order = append(order, 2) })
	o.Set("k", cty.True)
	assert.Equal(t, []int{1, 2}, order)
}

func TestFromGo_RoundTripsPlainData(t *testing.T) {
	in := map[string]any{
		"list":  []any{1, "two", true},
		"user":  map[string]any{"name": "ada", "age": 36},
		"ratio": 0.5,
		"none":  nil,
	}

	v, err := FromGo(in)
	require.NoError(t, err)
	require.True(t, v.Type().IsObjectType())

	list := v.GetAttr("list")
	require.True(t, list.Type().IsTupleType())
	assert.Equal(t, 3, list.LengthInt())

	back := ToGo(v).(map[string]any)
	assert.Equal(t, []any{int64(1), "two", true}, back["list"])
	assert.Equal(t, map[string]any{"name": "ada", "age": int64(36)}, back["user"])
	assert.Equal(t, 0.5, back["ratio"])
	assert.Nil(t, back["none"])
}

func TestFromGo_RejectsNonStringMapKeys(t *testing.T) {
	_, err := FromGo(map[int]string{1: "a"})
	require.Error(t, err)
}
