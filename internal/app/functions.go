package app

import (
	"os"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// envFunc exposes process environment variables to template expressions:
// `{{ env("HOME") }}`. Unset variables evaluate to null.
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		v, ok := os.LookupEnv(args[0].AsString())
		if !ok {
			return cty.NullVal(cty.String), nil
		}
		return cty.StringVal(v), nil
	},
})

// appFunctions are added to the default expression functions.
func appFunctions() map[string]function.Function {
	return map[string]function.Function{
		"env": envFunc,
	}
}
