// Package expr evaluates scriptx expression trees against a binding table.
package expr

import (
	"fmt"

	"github.com/ManitVig/scriptx/pkg/ast"
	"github.com/ManitVig/scriptx/pkg/types"
)

// Bindings provides variable lookup for expression evaluation.
type Bindings interface {
	// Lookup returns the value bound to name, if any.
	Lookup(name ast.Identifier) (types.Value, bool)
}

// MapBindings is a Bindings backed by a plain map.
type MapBindings map[ast.Identifier]types.Value

// Lookup implements Bindings.
func (m MapBindings) Lookup(name ast.Identifier) (types.Value, bool) {
	v, ok := m[name]
	return v, ok
}

// Evaluate computes the value of an expression. Bindings are only read.
// A nil Bindings behaves as an empty table.
func Evaluate(e ast.Expression, b Bindings) (types.Value, error) {
	switch n := e.(type) {
	case nil, *ast.EmptyExpression:
		return types.Value{}, types.NewEmptyExpressionError()
	case *ast.SingleValueExpression:
		return evalOperand(n.Operand, b)
	case *ast.BinaryOperatorExpression:
		return evalBinary(n, b)
	case *ast.UnaryOperatorExpression:
		return types.Value{}, types.NewUnsupportedError(fmt.Sprintf("unary operator %s", n.Op))
	default:
		return types.Value{}, fmt.Errorf("unsupported expression node type: %T", e)
	}
}

func evalOperand(op ast.Operand, b Bindings) (types.Value, error) {
	switch o := op.(type) {
	case *ast.Literal:
		return o.Value, nil
	case ast.Identifier:
		if b != nil {
			if v, ok := b.Lookup(o); ok {
				return v, nil
			}
		}
		return types.Value{}, types.NewUndeclaredError(string(o))
	case nil:
		return types.Value{}, types.NewEmptyExpressionError()
	default:
		return types.Value{}, fmt.Errorf("unsupported operand type: %T", op)
	}
}

// evalBinary evaluates the left operand fully before the right one, so
// the left side's error wins when both sides fail.
func evalBinary(n *ast.BinaryOperatorExpression, b Bindings) (types.Value, error) {
	left, err := Evaluate(n.Left, b)
	if err != nil {
		return types.Value{}, err
	}
	right, err := Evaluate(n.Right, b)
	if err != nil {
		return types.Value{}, err
	}

	switch n.Op {
	case ast.Add:
		return types.Add(left, right)
	case ast.Subtract:
		return types.Subtract(left, right)
	case ast.Multiply:
		return types.Multiply(left, right)
	case ast.Divide:
		return types.Divide(left, right)
	case ast.Or, ast.And:
		return types.Value{}, types.NewUnsupportedError(fmt.Sprintf("operator %s", n.Op))
	default:
		return types.Value{}, fmt.Errorf("unknown binary operator: %s", n.Op)
	}
}
