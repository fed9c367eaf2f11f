package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a scriptx failure.
type ErrorKind int

const (
	KindSyntax          ErrorKind = iota // malformed token sequence
	KindInvalidLiteral                   // literal text that cannot become a Value
	KindType                             // operator applied to an unsupported type
	KindZeroDivision                     // integer division by zero
	KindUndeclared                       // identifier used before declaration
	KindEmptyExpression                  // empty expression reached evaluation
	KindUnsupported                      // reserved feature with no implementation
	KindResourceLimit                    // nesting or size limit exceeded
)

// String returns the error kind name as reported to API clients.
func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "SyntaxError"
	case KindInvalidLiteral:
		return "InvalidLiteralError"
	case KindType:
		return "TypeError"
	case KindZeroDivision:
		return "ZeroDivisionError"
	case KindUndeclared:
		return "UndeclaredError"
	case KindEmptyExpression:
		return "EmptyExpressionError"
	case KindUnsupported:
		return "UnsupportedError"
	case KindResourceLimit:
		return "ResourceLimitError"
	default:
		return "UnknownError"
	}
}

// Error is a scriptx language error. Every failure in lexing, parsing and
// evaluation is reported as one.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Common error constructors.

// NewSyntaxError creates a SyntaxError located at a byte offset.
func NewSyntaxError(pos int, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindSyntax,
		Message: fmt.Sprintf("%s at position %d", fmt.Sprintf(format, args...), pos),
	}
}

// NewInvalidLiteralError creates an InvalidLiteralError for the given text.
func NewInvalidLiteralError(text string) *Error {
	return &Error{Kind: KindInvalidLiteral, Message: fmt.Sprintf("invalid literal %q", text)}
}

// NewTypeError creates a TypeError for an operation that is not defined on t.
func NewTypeError(operation string, t ValueType) *Error {
	return &Error{
		Kind:    KindType,
		Message: fmt.Sprintf("the operation %s is not defined for %s", operation, t),
	}
}

// NewZeroDivisionError creates a ZeroDivisionError.
func NewZeroDivisionError() *Error {
	return &Error{Kind: KindZeroDivision, Message: "integer division by zero"}
}

// NewUndeclaredError creates an UndeclaredError for a variable name.
func NewUndeclaredError(name string) *Error {
	return &Error{
		Kind:    KindUndeclared,
		Message: fmt.Sprintf("variable '%s' used without declaration", name),
	}
}

// NewEmptyExpressionError creates an EmptyExpressionError.
func NewEmptyExpressionError() *Error {
	return &Error{Kind: KindEmptyExpression, Message: "empty expression reached evaluation"}
}

// NewUnsupportedError creates an UnsupportedError for a reserved feature.
func NewUnsupportedError(feature string) *Error {
	return &Error{Kind: KindUnsupported, Message: fmt.Sprintf("%s is not supported yet", feature)}
}

// NewResourceLimitError creates a ResourceLimitError.
func NewResourceLimitError(msg string) *Error {
	return &Error{Kind: KindResourceLimit, Message: msg}
}
