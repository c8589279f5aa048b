package testutil

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/weavego/internal/reactive"
)

func ctyMap(data map[string]any) (map[string]cty.Value, error) {
	if data == nil {
		return nil, nil
	}
	return reactive.MapFromGo(data)
}

// Value converts a Go literal to cty and panics on failure. It is meant
// for test fixtures.
func Value(v any) cty.Value {
	cv, err := reactive.FromGo(v)
	if err != nil {
		panic(err)
	}
	return cv
}
