// Package ast defines the syntax tree produced by the parser: a Program of
// statements, each holding an expression tree.
package ast

import (
	"fmt"
	"strings"

	"github.com/ManitVig/scriptx/pkg/types"
)

// Identifier is a named reference. It is both an expression operand and
// the key of a binding table, so equality is by name.
type Identifier string

func (i Identifier) String() string { return string(i) }

// Expression is the interface for all expression nodes.
type Expression interface {
	expressionNode()
	String() string
}

// Operand is the payload of a SingleValueExpression: a *Literal or an
// Identifier.
type Operand interface {
	operandNode()
	String() string
}

// Literal is a constant value written in source.
type Literal struct {
	Value types.Value
}

func (l *Literal) operandNode()   {}
func (l *Literal) String() string { return l.Value.String() }

func (i Identifier) operandNode() {}

// EmptyExpression is the zero expression. The parser never emits one;
// evaluating it is an error.
type EmptyExpression struct{}

func (e *EmptyExpression) expressionNode() {}
func (e *EmptyExpression) String() string  { return "<empty>" }

// SingleValueExpression is a terminal expression: a literal or a variable
// reference.
type SingleValueExpression struct {
	Operand Operand
}

func (e *SingleValueExpression) expressionNode() {}
func (e *SingleValueExpression) String() string  { return e.Operand.String() }

// BinaryOperatorExpression applies Op to Left and Right.
type BinaryOperatorExpression struct {
	Left  Expression
	Right Expression
	Op    BinaryOperator
}

func (e *BinaryOperatorExpression) expressionNode() {}

// String renders the expression fully parenthesized, so the tree shape is
// visible: "5 * 2 + 3" renders as "(5 * (2 + 3))".
func (e *BinaryOperatorExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

// UnaryOperatorExpression applies Op to Operand.
type UnaryOperatorExpression struct {
	Operand Expression
	Op      UnaryOperator
}

func (e *UnaryOperatorExpression) expressionNode() {}
func (e *UnaryOperatorExpression) String() string  { return fmt.Sprintf("(%s%s)", e.Op, e.Operand) }

// Statement is the interface for all statement nodes.
type Statement interface {
	statementNode()
	String() string
}

// LetStatement binds the value of an expression to a name.
type LetStatement struct {
	Name  Identifier
	Value Expression
}

func (s *LetStatement) statementNode() {}
func (s *LetStatement) String() string { return fmt.Sprintf("let %s = %s;", s.Name, s.Value) }

// EndStatement terminates every Program. Running it does nothing.
type EndStatement struct{}

func (s *EndStatement) statementNode() {}
func (s *EndStatement) String() string { return "<end>" }

// Program is the parser's output: statements in source order, terminated
// by exactly one EndStatement.
type Program struct {
	Statements []Statement
}

// Lets returns the let statements of the program in order.
func (p *Program) Lets() []*LetStatement {
	var lets []*LetStatement
	for _, s := range p.Statements {
		if let, ok := s.(*LetStatement); ok {
			lets = append(lets, let)
		}
	}
	return lets
}

// String renders one statement per line.
func (p *Program) String() string {
	lines := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}
