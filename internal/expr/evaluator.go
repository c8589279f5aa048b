package expr

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/vk/weavego/internal/scope"
)

// Compiled is a parsed expression together with its reference analysis.
// Compiled values are cached and shared; they are immutable.
type Compiled struct {
	Source string
	Expr   hcl.Expression
	Refs   *Container
}

// Evaluator compiles and evaluates template expressions. One evaluator is
// shared by every component of an application.
type Evaluator struct {
	functions map[string]function.Function

	mu        sync.Mutex
	compiled  map[string]*Compiled
	templates map[string]*Template
}

// NewEvaluator creates an evaluator with the default function table plus
// any extra functions. Extra functions override defaults of the same name.
func NewEvaluator(extra map[string]function.Function) *Evaluator {
	fns := DefaultFunctions()
	for name, fn := range extra {
		fns[name] = fn
	}
	return &Evaluator{
		functions: fns,
		compiled:  make(map[string]*Compiled),
		templates: make(map[string]*Template),
	}
}

// DefaultFunctions returns the function table available to template
// expressions.
func DefaultFunctions() map[string]function.Function {
	return map[string]function.Function{
		"abs":        stdlib.AbsoluteFunc,
		"ceil":       stdlib.CeilFunc,
		"coalesce":   stdlib.CoalesceFunc,
		"concat":     stdlib.ConcatFunc,
		"contains":   stdlib.ContainsFunc,
		"distinct":   stdlib.DistinctFunc,
		"element":    stdlib.ElementFunc,
		"flatten":    stdlib.FlattenFunc,
		"floor":      stdlib.FloorFunc,
		"format":     stdlib.FormatFunc,
		"int":        stdlib.IntFunc,
		"join":       stdlib.JoinFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
		"keys":       stdlib.KeysFunc,
		"length":     stdlib.LengthFunc,
		"lookup":     stdlib.LookupFunc,
		"lower":      stdlib.LowerFunc,
		"max":        stdlib.MaxFunc,
		"merge":      stdlib.MergeFunc,
		"min":        stdlib.MinFunc,
		"range":      stdlib.RangeFunc,
		"replace":    stdlib.ReplaceFunc,
		"reverse":    stdlib.ReverseListFunc,
		"slice":      stdlib.SliceFunc,
		"sort":       stdlib.SortFunc,
		"split":      stdlib.SplitFunc,
		"strlen":     stdlib.StrlenFunc,
		"substr":     stdlib.SubstrFunc,
		"title":      stdlib.TitleFunc,
		"trimspace":  stdlib.TrimSpaceFunc,
		"upper":      stdlib.UpperFunc,
		"values":     stdlib.ValuesFunc,
	}
}

// Functions returns the evaluator's function table.
func (e *Evaluator) Functions() map[string]function.Function {
	return e.functions
}

// Compile parses src as a single expression. Results are cached by source.
// Calls to unknown functions are rejected here rather than at evaluation.
func (e *Evaluator) Compile(src string) (*Compiled, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.compileLocked(src)
}

func (e *Evaluator) compileLocked(src string) (*Compiled, error) {
	if c, ok := e.compiled[src]; ok {
		return c, nil
	}

	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return nil, fmt.Errorf("empty expression")
	}
	parsed, diags := hclsyntax.ParseExpression([]byte(trimmed), "template", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse expression %q: %w", trimmed, diags)
	}

	refs := NewContainer()
	refs.Add(parsed)
	for _, name := range refs.CalledFunctions() {
		if _, ok := e.functions[name]; !ok {
			return nil, fmt.Errorf("expression %q calls unknown function %q", trimmed, name)
		}
	}

	c := &Compiled{Source: trimmed, Expr: parsed, Refs: refs}
	e.compiled[src] = c
	return c, nil
}

// Eval compiles (or reuses) src and evaluates it against layer.
func (e *Evaluator) Eval(src string, layer *scope.Layer) (cty.Value, error) {
	c, err := e.Compile(src)
	if err != nil {
		return cty.NilVal, err
	}
	return e.EvalCompiled(c, layer)
}

// EvalCompiled evaluates a compiled expression against layer. Root names
// that resolve nowhere in the chain evaluate to null instead of failing, so
// `{{ missing }}` renders empty.
func (e *Evaluator) EvalCompiled(c *Compiled, layer *scope.Layer) (cty.Value, error) {
	ctx := layer.EvalContext(e.functions)

	var missing map[string]cty.Value
	for _, name := range c.Refs.RootNames() {
		if _, ok := layer.Get(name); ok {
			continue
		}
		if missing == nil {
			missing = make(map[string]cty.Value)
		}
		missing[name] = cty.NullVal(cty.DynamicPseudoType)
	}
	if missing != nil {
		ctx = ctx.NewChild()
		ctx.Variables = missing
	}

	v, diags := c.Expr.Value(ctx)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to evaluate %q: %w", c.Source, diags)
	}
	return v, nil
}

// Truthy reports whether v counts as true in a condition: null and unknown
// are false, numbers are true when non-zero, strings and collections when
// non-empty.
func Truthy(v cty.Value) bool {
	if v.IsNull() || !v.IsKnown() {
		return false
	}
	ty := v.Type()
	switch {
	case ty == cty.Bool:
		return v.True()
	case ty == cty.Number:
		return v.AsBigFloat().Sign() != 0
	case ty == cty.String:
		return v.AsString() != ""
	case ty.IsListType(), ty.IsSetType(), ty.IsTupleType(), ty.IsMapType():
		return v.LengthInt() > 0
	case ty.IsObjectType():
		return len(ty.AttributeTypes()) > 0
	default:
		return true
	}
}

// Stringify renders v the way it appears in rendered text. Null renders
// empty; collections render as JSON.
func Stringify(v cty.Value) string {
	if v.IsNull() || !v.IsKnown() {
		return ""
	}
	ty := v.Type()
	switch ty {
	case cty.String:
		return v.AsString()
	case cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case cty.Number:
		return formatNumber(v.AsBigFloat())
	}
	b, err := ctyjson.Marshal(v, ty)
	if err != nil {
		return ""
	}
	return string(b)
}

func formatNumber(f *big.Float) string {
	if f.IsInt() {
		i, _ := f.Int(nil)
		return i.String()
	}
	return f.Text('f', -1)
}

// Names returns the sorted function names, for diagnostics.
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.functions))
	for name := range e.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
