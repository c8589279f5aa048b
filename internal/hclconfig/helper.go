package hclconfig

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/vk/weavego/internal/ctxlog"
	"github.com/vk/weavego/internal/expr"
	"github.com/vk/weavego/internal/reactive"
)

// isExprDefined checks if an HCL expression was actually present in the
// source. The decoder fills omitted optional attributes with zero-width
// placeholder expressions, so a nil check is not enough.
func isExprDefined(ctx context.Context, e hcl.Expression, attrName string) bool {
	logger := ctxlog.FromContext(ctx)

	if e == nil {
		logger.Debug("Expression is nil, considering it undefined.", "attribute", attrName)
		return false
	}
	r := e.Range()
	isDefined := r.End.Byte > r.Start.Byte
	logger.Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// objectAttrs evaluates e to an object or map and returns its attributes.
// The template function table is available, variables are not.
func objectAttrs(e hcl.Expression) (map[string]cty.Value, error) {
	evalCtx := &hcl.EvalContext{Functions: expr.DefaultFunctions()}
	v, diags := e.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	if v.IsNull() {
		return map[string]cty.Value{}, nil
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("expected an object, got %s", ty.FriendlyName())
	}
	if v.LengthInt() == 0 {
		return map[string]cty.Value{}, nil
	}
	return v.AsValueMap(), nil
}

// readDataFile decodes a YAML (or JSON) document holding a mapping of
// top-level properties.
func readDataFile(path string) (map[string]cty.Value, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode data file %s: %w", path, err)
	}
	values, err := reactive.MapFromGo(doc)
	if err != nil {
		return nil, fmt.Errorf("data file %s: %w", path, err)
	}
	return values, nil
}
