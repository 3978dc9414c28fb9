package codehost

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncHostCompileResolvesRegistry(t *testing.T) {
	host := NewFuncHost(slog.Default())
	host.Register("double", func(_ context.Context, inputs map[string]any) ([]any, error) {
		return []any{inputs["x"].(int) * 2}, nil
	})

	fn, err := host.Compile("def double(x: int) -> int:\n    return x * 2\n")
	require.NoError(t, err)

	outputs, err := host.Invoke(context.Background(), fn, map[string]any{"x": 21})
	require.NoError(t, err)
	assert.Equal(t, []any{42}, outputs)
}

func TestFuncHostUnregisteredFunction(t *testing.T) {
	host := NewFuncHost(slog.Default())

	_, err := host.Compile("def missing() -> int:\n    return 1\n")
	require.Error(t, err)

	var compileErr *CompileError
	assert.ErrorAs(t, err, &compileErr)
}

func TestFuncHostPropagatesErrors(t *testing.T) {
	host := NewFuncHost(slog.Default())

	boom := errors.New("boom")
	host.Register("fail", func(_ context.Context, _ map[string]any) ([]any, error) {
		return nil, boom
	})

	fn, err := host.Compile("def fail() -> int:\n    return 1\n")
	require.NoError(t, err)

	_, err = host.Invoke(context.Background(), fn, nil)
	assert.ErrorIs(t, err, boom)
}

func TestFuncHostRecoversPanic(t *testing.T) {
	host := NewFuncHost(slog.Default())
	host.Register("panics", func(_ context.Context, _ map[string]any) ([]any, error) {
		panic("unexpected")
	})

	fn, err := host.Compile("def panics() -> int:\n    return 1\n")
	require.NoError(t, err)

	_, err = host.Invoke(context.Background(), fn, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}
