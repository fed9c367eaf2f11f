package ast

import "github.com/ManitVig/scriptx/pkg/token"

// BinaryOperator is the operator of a BinaryOperatorExpression.
type BinaryOperator int

const (
	Add BinaryOperator = iota
	Subtract
	Multiply
	Divide
	Or  // reserved, no token produces it yet
	And // reserved, no token produces it yet
)

// BinaryOperatorFromToken maps an operator token to its BinaryOperator.
func BinaryOperatorFromToken(t token.Type) (BinaryOperator, bool) {
	switch t {
	case token.Plus:
		return Add, true
	case token.Minus:
		return Subtract, true
	case token.Star:
		return Multiply, true
	case token.Slash:
		return Divide, true
	default:
		return 0, false
	}
}

func (op BinaryOperator) String() string {
	switch op {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	case Or:
		return "or"
	case And:
		return "and"
	default:
		return "?"
	}
}

// UnaryOperator is the operator of a UnaryOperatorExpression.
type UnaryOperator int

const (
	Not UnaryOperator = iota
)

// UnaryOperatorFromToken maps an operator token to its UnaryOperator.
func UnaryOperatorFromToken(t token.Type) (UnaryOperator, bool) {
	if t == token.Bang {
		return Not, true
	}
	return 0, false
}

func (op UnaryOperator) String() string {
	if op == Not {
		return "!"
	}
	return "?"
}
