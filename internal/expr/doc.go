// Package expr evaluates the expressions embedded in templates.
//
// Expressions use HCL native syntax and evaluate to cty values. Text and
// attribute values carry them between `{{` and `}}` delimiters; directive
// attributes such as `*if` or `[class.done]` hold a bare expression.
// Parsed expressions are cached per evaluator, and their variable
// references are analyzed once so callers can tell which data properties a
// binding depends on.
package expr
