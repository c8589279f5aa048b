// Package fault defines the error kinds raised by the build/update engine.
//
// Every kind is a sentinel that callers test with errors.Is. The engine wraps
// the sentinel in an *Error carrying the operation that detected it, so log
// lines and error channel reports say where the contract broke.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrModuleContractViolation reports a module that broke its declared
	// contract, e.g. a write-only module claiming to mutate attributes or a
	// module instance linked to a node twice.
	ErrModuleContractViolation = errors.New("module contract violation")

	// ErrResolutionFailure reports that something required for construction
	// could not be found, e.g. a structural directive's attribute vanished or
	// a nested component has no content root for an appended child.
	ErrResolutionFailure = errors.New("resolution failure")

	// ErrIterationOverflow reports that fixed-point module resolution did not
	// converge within the pass limit.
	ErrIterationOverflow = errors.New("iteration overflow")

	// ErrUpdateLoop reports that the update chain exceeded its bound.
	ErrUpdateLoop = errors.New("update loop")
)

// Error wraps one of the sentinel kinds with the operation that raised it.
type Error struct {
	Kind   error
	Op     string
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Detail)
}

// Unwrap exposes the sentinel kind to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

// New creates an *Error of the given kind with a formatted detail message.
func New(kind error, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Contract is shorthand for New(ErrModuleContractViolation, ...).
func Contract(op string, format string, args ...any) *Error {
	return New(ErrModuleContractViolation, op, format, args...)
}

// Resolution is shorthand for New(ErrResolutionFailure, ...).
func Resolution(op string, format string, args ...any) *Error {
	return New(ErrResolutionFailure, op, format, args...)
}
