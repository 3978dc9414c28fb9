package codehost

import (
	"context"
	"fmt"
	"log/slog"
)

// GoFunc is a Go-native implementation of a node entry function. Inputs
// are keyed by parameter name; outputs are positional, matching the
// function's return annotation.
type GoFunc func(ctx context.Context, inputs map[string]any) ([]any, error)

// FuncHost resolves entry functions against a registry of Go callables
// keyed by function name. The node's code still defines the signature
// (and therefore the pins); the registered Go function supplies the body.
type FuncHost struct {
	logger *slog.Logger
	funcs  map[string]GoFunc
}

// NewFuncHost creates an empty function registry host.
func NewFuncHost(logger *slog.Logger) *FuncHost {
	return &FuncHost{
		logger: logger,
		funcs:  make(map[string]GoFunc),
	}
}

// Register binds a Go implementation to an entry-function name.
func (h *FuncHost) Register(name string, fn GoFunc) {
	h.funcs[name] = fn
}

type funcCallable struct {
	sig Signature
	fn  GoFunc
}

func (c *funcCallable) Name() string         { return c.sig.Name }
func (c *funcCallable) Signature() Signature { return c.sig }

// Compile parses the entry-function signature and resolves the registered
// implementation.
func (h *FuncHost) Compile(code string) (Callable, error) {
	sig, err := ParseSignature(code)
	if err != nil {
		return nil, err
	}

	fn, ok := h.funcs[sig.Name]
	if !ok {
		return nil, NewCompileError("function %q not registered", sig.Name)
	}

	return &funcCallable{sig: sig, fn: fn}, nil
}

// Invoke runs the callable. A panicking implementation is reported as an
// error rather than taking the run down.
func (h *FuncHost) Invoke(ctx context.Context, fn Callable, inputs map[string]any) (outputs []any, err error) {
	callable, ok := fn.(*funcCallable)
	if !ok {
		return nil, fmt.Errorf("callable %q was not compiled by this host", fn.Name())
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Node function panicked", "function", fn.Name(), "panic", r)
			err = fmt.Errorf("function %q panicked: %v", fn.Name(), r)
		}
	}()

	return callable.fn(ctx, inputs)
}
