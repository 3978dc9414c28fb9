package codehost

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ExprHost is a built-in code host for nodes whose function body is a
// single "return <expression>" line. The expression is evaluated with HCL
// expression syntax over a namespace built from the node's inputs, so the
// editor has a runnable host without an external interpreter. Bodies with
// statements, or signatures declaring more than one return value, are
// rejected at compile time.
type ExprHost struct {
	logger *slog.Logger
}

// NewExprHost creates an expression-evaluating host.
func NewExprHost(logger *slog.Logger) *ExprHost {
	return &ExprHost{logger: logger}
}

type exprCallable struct {
	sig  Signature
	expr hclsyntax.Expression
}

func (c *exprCallable) Name() string         { return c.sig.Name }
func (c *exprCallable) Signature() Signature { return c.sig }

// Compile parses the signature and the single return expression.
func (h *ExprHost) Compile(code string) (Callable, error) {
	sig, err := ParseSignature(code)
	if err != nil {
		return nil, err
	}

	if len(sig.Returns) != 1 {
		return nil, NewCompileError("expression host requires exactly one return value, %q declares %d", sig.Name, len(sig.Returns))
	}

	exprText, err := returnExpression(code)
	if err != nil {
		return nil, err
	}

	expr, diags := hclsyntax.ParseExpression([]byte(exprText), sig.Name+".hcl", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, NewCompileError("invalid expression in %q: %s", sig.Name, diags.Error())
	}

	return &exprCallable{sig: sig, expr: expr}, nil
}

// Invoke evaluates the expression with the inputs as variables.
func (h *ExprHost) Invoke(_ context.Context, fn Callable, inputs map[string]any) ([]any, error) {
	callable, ok := fn.(*exprCallable)
	if !ok {
		return nil, fmt.Errorf("callable %q was not compiled by this host", fn.Name())
	}

	variables := make(map[string]cty.Value, len(inputs))

	for name, value := range inputs {
		ctyVal, err := toCtyValue(value)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}

		variables[name] = ctyVal
	}

	result, diags := callable.expr.Value(&hcl.EvalContext{Variables: variables})
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating %q: %s", fn.Name(), diags.Error())
	}

	goVal, err := fromCtyValue(result)
	if err != nil {
		return nil, fmt.Errorf("converting result of %q: %w", fn.Name(), err)
	}

	return []any{goVal}, nil
}

// returnExpression extracts the expression from the first "return" line
// following the signature.
func returnExpression(code string) (string, error) {
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "return" {
			return "", NewCompileError("bare return has no value")
		}

		if strings.HasPrefix(trimmed, "return ") {
			return strings.TrimSpace(trimmed[len("return "):]), nil
		}
	}

	return "", NewCompileError("function body has no return statement")
}

func toCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}

	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty type: %w", err)
	}

	return gocty.ToCtyValue(v, ty)
}

func fromCtyValue(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == 0 {
			return i, nil
		}

		f, _ := bf.Float64()

		return f, nil
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		items := make([]any, 0, v.LengthInt())

		for it := v.ElementIterator(); it.Next(); {
			_, element := it.Element()

			converted, err := fromCtyValue(element)
			if err != nil {
				return nil, err
			}

			items = append(items, converted)
		}

		return items, nil
	case ty.IsObjectType() || ty.IsMapType():
		entries := make(map[string]any, v.LengthInt())

		for it := v.ElementIterator(); it.Next(); {
			key, element := it.Element()

			converted, err := fromCtyValue(element)
			if err != nil {
				return nil, err
			}

			entries[key.AsString()] = converted
		}

		return entries, nil
	default:
		return nil, fmt.Errorf("unsupported result type %s", ty.FriendlyName())
	}
}
