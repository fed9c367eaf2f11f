// Package token defines the lexical vocabulary of the scriptx language.
package token

import "fmt"

// Type represents the type of a lexical token.
type Type int

const (
	// Special
	Illegal Type = iota // unrecognized character
	EOF                 // end of input

	// Literals
	Ident  // identifier (variable name)
	Number // numeric literal, raw text

	// Keywords
	Let      // let
	Function // fn
	Return   // return
	If       // if
	Else     // else
	True     // true
	False    // false

	// Operators
	Assign // =
	Eq     // ==
	Bang   // !
	NotEq  // !=
	Plus   // +
	Minus  // -
	Star   // *
	Slash  // /
	Lt     // <
	Gt     // >

	// Punctuation
	Comma     // ,
	Semicolon // ;
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
)

// Token represents a single lexical token.
type Token struct {
	Type  Type
	Value string // matched source text; empty for EOF
	Pos   int    // byte offset in source
}

var keywords = map[string]Type{
	"let":    Let,
	"fn":     Function,
	"return": Return,
	"if":     If,
	"else":   Else,
	"true":   True,
	"false":  False,
}

// LookupIdent returns the keyword type for word, or Ident if word is not a keyword.
func LookupIdent(word string) Type {
	if t, ok := keywords[word]; ok {
		return t
	}
	return Ident
}

// IsKeyword reports whether t is one of the reserved words.
func (t Type) IsKeyword() bool {
	return t >= Let && t <= False
}

// IsBinaryOperator reports whether t can join two operands in an expression.
func (t Type) IsBinaryOperator() bool {
	switch t {
	case Plus, Minus, Star, Slash:
		return true
	default:
		return false
	}
}

// String returns a debug-friendly representation of the token type.
func (t Type) String() string {
	switch t {
	case Illegal:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case Ident:
		return "IDENT"
	case Number:
		return "NUMBER"
	case Let:
		return "LET"
	case Function:
		return "FUNCTION"
	case Return:
		return "RETURN"
	case If:
		return "IF"
	case Else:
		return "ELSE"
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	case Assign:
		return "ASSIGN"
	case Eq:
		return "EQ"
	case Bang:
		return "BANG"
	case NotEq:
		return "NOT_EQ"
	case Plus:
		return "PLUS"
	case Minus:
		return "MINUS"
	case Star:
		return "STAR"
	case Slash:
		return "SLASH"
	case Lt:
		return "LT"
	case Gt:
		return "GT"
	case Comma:
		return "COMMA"
	case Semicolon:
		return "SEMICOLON"
	case LParen:
		return "LPAREN"
	case RParen:
		return "RPAREN"
	case LBrace:
		return "LBRACE"
	case RBrace:
		return "RBRACE"
	default:
		return "UNKNOWN"
	}
}

func (t Token) String() string {
	if t.Type == EOF {
		return fmt.Sprintf("EOF@%d", t.Pos)
	}
	return fmt.Sprintf("%s(%q)@%d", t.Type, t.Value, t.Pos)
}
