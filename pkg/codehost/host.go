// Package codehost defines the narrow boundary between the graph core and
// whatever runtime actually executes user-authored node functions: compile
// a code block into a callable, invoke the callable with an input
// namespace, get outputs or an error. The rest of the core never depends
// on how compilation or execution is implemented.
package codehost

import (
	"context"
	"fmt"
)

// Param is one parameter of an entry function.
type Param struct {
	Name string
	Type string
}

// Signature describes an entry function: its name, parameters in
// declaration order, and return value types. A tuple-typed return is
// flattened into one entry per element.
type Signature struct {
	Name    string
	Params  []Param
	Returns []string
}

// Callable is a compiled entry function ready to be invoked.
type Callable interface {
	Name() string
	Signature() Signature
}

// Host turns node code into callables and runs them. Invoke is a
// synchronous call boundary: it blocks for a result or an error, and a
// cancel request can only take effect between invocations.
type Host interface {
	Compile(code string) (Callable, error)
	Invoke(ctx context.Context, fn Callable, inputs map[string]any) ([]any, error)
}

// CompileError reports that a code block could not be turned into a
// callable. Node code that fails to compile is still stored verbatim; the
// node just has no entry function.
type CompileError struct {
	Msg string
}

func (e *CompileError) Error() string {
	return "compile: " + e.Msg
}

// NewCompileError creates a CompileError with a formatted message.
func NewCompileError(format string, args ...any) *CompileError {
	return &CompileError{Msg: fmt.Sprintf(format, args...)}
}
