// Package lexer turns scriptx source text into a token stream.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/ManitVig/scriptx/pkg/token"
)

var singleChar = map[rune]token.Type{
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'<': token.Lt,
	'>': token.Gt,
	',': token.Comma,
	';': token.Semicolon,
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
}

// Lexer scans a source string left to right, one token per call.
type Lexer struct {
	input string
	pos   int // byte offset of the next unread character
}

// New creates a new lexer for the given input.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Reset rewinds the cursor to the start of the input.
func (l *Lexer) Reset() {
	l.pos = 0
}

// Tokenize scans the remaining input and returns all tokens, ending with
// exactly one EOF token.
func (l *Lexer) Tokenize() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

// NextToken returns the next token and advances the cursor past it.
// Unrecognized characters come back as Illegal tokens; it is up to the
// parser to reject them.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, Pos: len(l.input)}
	}

	start := l.pos
	ch, width := l.peek(0)

	switch {
	case unicode.IsLetter(ch):
		return l.readIdentifier()
	case isDigit(ch):
		return l.readNumber()
	}

	switch ch {
	case '=':
		if next, _ := l.peek(width); next == '=' {
			l.pos += 2
			return token.Token{Type: token.Eq, Value: "==", Pos: start}
		}
		l.pos++
		return token.Token{Type: token.Assign, Value: "=", Pos: start}
	case '!':
		if next, _ := l.peek(width); next == '=' {
			l.pos += 2
			return token.Token{Type: token.NotEq, Value: "!=", Pos: start}
		}
		l.pos++
		return token.Token{Type: token.Bang, Value: "!", Pos: start}
	}

	l.pos += width
	if tt, ok := singleChar[ch]; ok {
		return token.Token{Type: tt, Value: string(ch), Pos: start}
	}
	return token.Token{Type: token.Illegal, Value: l.input[start:l.pos], Pos: start}
}

// peek decodes the character offset bytes after the cursor. It returns
// utf8.RuneError and zero width past the end of input.
func (l *Lexer) peek(offset int) (rune, int) {
	if l.pos+offset >= len(l.input) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.input[l.pos+offset:])
}

// readIdentifier reads a maximal run of letters and classifies it as a
// keyword or identifier.
func (l *Lexer) readIdentifier() token.Token {
	start := l.pos
	for {
		ch, width := l.peek(0)
		if width == 0 || !unicode.IsLetter(ch) {
			break
		}
		l.pos += width
	}

	word := l.input[start:l.pos]
	return token.Token{Type: token.LookupIdent(word), Value: word, Pos: start}
}

// readNumber reads a maximal run of digits and dots. The text is not
// validated here; malformed literals such as "1.2.3" are rejected when the
// value is built.
func (l *Lexer) readNumber() token.Token {
	start := l.pos
	for l.pos < len(l.input) && (isDigit(rune(l.input[l.pos])) || l.input[l.pos] == '.') {
		l.pos++
	}
	return token.Token{Type: token.Number, Value: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
