// Package parser builds a Program from a scriptx token stream.
//
// The expression grammar is right-recursive with no precedence table:
// a primary followed by an operator takes everything to its right as the
// right operand, so "5 * 2 + 3" groups as "5 * (2 + 3)".
package parser

import (
	"fmt"

	"github.com/ManitVig/scriptx/pkg/ast"
	"github.com/ManitVig/scriptx/pkg/lexer"
	"github.com/ManitVig/scriptx/pkg/token"
	"github.com/ManitVig/scriptx/pkg/types"
)

// DefaultMaxDepth bounds expression nesting. Both parenthesized groups and
// chained binary operators count, since each recurses once.
const DefaultMaxDepth = 256

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth sets the maximum expression nesting depth. Values below 1
// are ignored.
func WithMaxDepth(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// WithStrictStatements makes any top-level token other than "let" a syntax
// error. By default such tokens are skipped.
func WithStrictStatements() Option {
	return func(p *Parser) {
		p.strict = true
	}
}

// WithMaxSourceLength makes ParseSource reject longer sources. Zero means
// no limit.
func WithMaxSourceLength(n int) Option {
	return func(p *Parser) {
		p.maxSourceLength = n
	}
}

// Parser is a recursive descent parser over a read-only token slice.
type Parser struct {
	tokens []token.Token
	pos    int

	depth           int
	maxDepth        int
	maxSourceLength int
	strict          bool
}

// New creates a parser over tokens. The slice should end with an EOF
// token; reads past its end behave as EOF either way.
func New(tokens []token.Token, opts ...Option) *Parser {
	p := &Parser{tokens: tokens, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses a complete token stream into a Program.
func Parse(tokens []token.Token, opts ...Option) (*ast.Program, error) {
	return New(tokens, opts...).ParseProgram()
}

// ParseSource lexes and parses source text.
func ParseSource(source string, opts ...Option) (*ast.Program, error) {
	p := New(nil, opts...)
	if p.maxSourceLength > 0 && len(source) > p.maxSourceLength {
		return nil, types.NewResourceLimitError(
			fmt.Sprintf("source exceeds maximum length of %d bytes", p.maxSourceLength))
	}
	p.tokens = lexer.New(source).Tokenize()
	return p.ParseProgram()
}

// ParseProgram parses statements until EOF and appends the terminating
// EndStatement.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	var statements []ast.Statement

	for p.current().Type != token.EOF {
		tok := p.current()
		switch {
		case tok.Type == token.Let:
			stmt, err := p.parseLetStatement()
			if err != nil {
				return nil, err
			}
			statements = append(statements, stmt)
		case p.strict:
			return nil, types.NewSyntaxError(tok.Pos, "expected 'let', got %s", describe(tok))
		}
		p.advance()
	}

	statements = append(statements, &ast.EndStatement{})
	return &ast.Program{Statements: statements}, nil
}

// current returns the current token.
func (p *Parser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos]
}

// peek returns the token after the current one without consuming it.
func (p *Parser) peek() token.Token {
	if p.current().Type == token.EOF || p.pos+1 >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token, stopping at EOF.
func (p *Parser) advance() {
	if p.current().Type != token.EOF {
		p.pos++
	}
}

// expect checks that the current token has type tt.
func (p *Parser) expect(tt token.Type, what string) error {
	if tok := p.current(); tok.Type != tt {
		return types.NewSyntaxError(tok.Pos, "expected %s, got %s", what, describe(tok))
	}
	return nil
}

func (p *Parser) eof() token.Token {
	if n := len(p.tokens); n > 0 {
		return token.Token{Type: token.EOF, Pos: p.tokens[n-1].Pos + len(p.tokens[n-1].Value)}
	}
	return token.Token{Type: token.EOF}
}

// parseLetStatement parses "let IDENT = expression ;". It starts on the
// let keyword and stops on the semicolon.
func (p *Parser) parseLetStatement() (*ast.LetStatement, error) {
	p.advance() // consume let

	name := p.current()
	if name.Type != token.Ident {
		return nil, types.NewSyntaxError(name.Pos, "expected identifier after 'let', got %s", describe(name))
	}
	if next := p.peek(); next.Type != token.Assign {
		return nil, types.NewSyntaxError(next.Pos, "expected '=' after '%s', got %s", name.Value, describe(next))
	}
	p.advance()
	p.advance()

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.Semicolon, "';'"); err != nil {
		return nil, err
	}

	return &ast.LetStatement{Name: ast.Identifier(name.Value), Value: value}, nil
}

// parseExpression parses an expression starting at the current token. On
// success the current token is the ';' or ')' that ended it.
func (p *Parser) parseExpression() (ast.Expression, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		return nil, types.NewResourceLimitError(
			fmt.Sprintf("expression nesting exceeds maximum depth of %d at position %d", p.maxDepth, p.current().Pos))
	}

	tok := p.current()
	var left ast.Expression

	switch tok.Type {
	case token.Number:
		v, err := types.FromToken(tok)
		if err != nil {
			return nil, fmt.Errorf("%w at position %d", err, tok.Pos)
		}
		left = &ast.SingleValueExpression{Operand: &ast.Literal{Value: v}}
	case token.Ident:
		left = &ast.SingleValueExpression{Operand: ast.Identifier(tok.Value)}
	case token.LParen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RParen, "')'"); err != nil {
			return nil, err
		}
		left = inner
	case token.Illegal:
		return nil, types.NewSyntaxError(tok.Pos, "illegal character %q", tok.Value)
	default:
		return nil, types.NewSyntaxError(tok.Pos, "invalid token %s in expression", describe(tok))
	}

	return p.parseContinuation(left)
}

// parseContinuation looks past a primary: a terminator ends the
// expression, an operator makes the primary the left operand of
// everything that follows.
func (p *Parser) parseContinuation(left ast.Expression) (ast.Expression, error) {
	next := p.peek()

	switch {
	case next.Type == token.Semicolon || next.Type == token.RParen:
		p.advance()
		return left, nil
	case next.Type.IsBinaryOperator():
		op, _ := ast.BinaryOperatorFromToken(next.Type)
		p.advance()
		p.advance()
		right, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOperatorExpression{Left: left, Right: right, Op: op}, nil
	default:
		return nil, types.NewSyntaxError(next.Pos, "unhandled token %s after operand", describe(next))
	}
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.Illegal:
		return fmt.Sprintf("illegal character %q", tok.Value)
	default:
		return fmt.Sprintf("%s %q", tok.Type, tok.Value)
	}
}
