// Package types defines the runtime values of the scriptx language:
// 32-bit integers, 32-bit floats and booleans, and the arithmetic between them.
package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ManitVig/scriptx/pkg/token"
	"gopkg.in/yaml.v3"
)

// ValueType represents the type of a scriptx value.
type ValueType int

const (
	TypeInt   ValueType = iota // int32
	TypeFloat                  // float32
	TypeBool                   // bool
)

// String returns the type name used in error messages and API output.
func (t ValueType) String() string {
	switch t {
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Value represents a scriptx runtime value. It is a small tagged union and
// is always passed by value.
type Value struct {
	typ      ValueType
	intVal   int32
	floatVal float32
	boolVal  bool
}

// NewInt creates an integer value.
func NewInt(v int32) Value {
	return Value{typ: TypeInt, intVal: v}
}

// NewFloat creates a float value.
func NewFloat(v float32) Value {
	return Value{typ: TypeFloat, floatVal: v}
}

// NewBool creates a boolean value.
func NewBool(v bool) Value {
	return Value{typ: TypeBool, boolVal: v}
}

// FromToken builds a value from a literal token. Numbers containing a '.'
// become floats, other numbers integers; true and false become booleans.
func FromToken(tok token.Token) (Value, error) {
	switch tok.Type {
	case token.True:
		return NewBool(true), nil
	case token.False:
		return NewBool(false), nil
	case token.Number:
		return parseNumber(tok.Value)
	default:
		return Value{}, NewInvalidLiteralError(tok.Value)
	}
}

// ParseLiteral builds a value from literal text as written outside of
// source code, e.g. on the command line: "true", "false", "-3", "2.5".
// Unlike source literals, a leading sign is accepted.
func ParseLiteral(text string) (Value, error) {
	switch text {
	case "true":
		return NewBool(true), nil
	case "false":
		return NewBool(false), nil
	}
	return parseNumber(text)
}

func parseNumber(text string) (Value, error) {
	if strings.Contains(text, ".") {
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return Value{}, NewInvalidLiteralError(text)
		}
		return NewFloat(float32(f)), nil
	}

	i, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return Value{}, NewInvalidLiteralError(text)
	}
	return NewInt(int32(i)), nil
}

// Type returns the value's type.
func (v Value) Type() ValueType {
	return v.typ
}

// IsNumber reports whether the value is an integer or a float.
func (v Value) IsNumber() bool {
	return v.typ == TypeInt || v.typ == TypeFloat
}

// AsInt returns the integer value. Panics if not an integer.
func (v Value) AsInt() int32 {
	if v.typ != TypeInt {
		panic(fmt.Sprintf("AsInt called on %s value", v.typ))
	}
	return v.intVal
}

// AsFloat returns the float value. Panics if not a float.
func (v Value) AsFloat() float32 {
	if v.typ != TypeFloat {
		panic(fmt.Sprintf("AsFloat called on %s value", v.typ))
	}
	return v.floatVal
}

// AsBool returns the boolean value. Panics if not a boolean.
func (v Value) AsBool() bool {
	if v.typ != TypeBool {
		panic(fmt.Sprintf("AsBool called on %s value", v.typ))
	}
	return v.boolVal
}

// Equal reports whether both values have the same type and payload.
// Integers and floats never compare equal to each other.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeInt:
		return v.intVal == other.intVal
	case TypeFloat:
		return v.floatVal == other.floatVal
	case TypeBool:
		return v.boolVal == other.boolVal
	}
	return false
}

// String returns a human-readable representation of the value. Integral
// floats keep a trailing ".0" so they stay distinguishable from integers.
func (v Value) String() string {
	switch v.typ {
	case TypeInt:
		return strconv.FormatInt(int64(v.intVal), 10)
	case TypeFloat:
		f := float64(v.floatVal)
		if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e21 {
			return strconv.FormatFloat(f, 'f', 1, 32)
		}
		return strconv.FormatFloat(f, 'g', -1, 32)
	case TypeBool:
		return strconv.FormatBool(v.boolVal)
	}
	return "<unknown>"
}

// ToGoValue converts a Value to a plain Go value.
func (v Value) ToGoValue() interface{} {
	switch v.typ {
	case TypeInt:
		return v.intVal
	case TypeFloat:
		return v.floatVal
	case TypeBool:
		return v.boolVal
	}
	return nil
}

// MarshalJSON encodes the value as a JSON number or boolean. Non-finite
// floats have no JSON form and are encoded as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.typ == TypeFloat {
		f := float64(v.floatVal)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return json.Marshal(v.String())
		}
	}
	switch v.typ {
	case TypeInt, TypeFloat, TypeBool:
		return []byte(v.String()), nil
	}
	return nil, fmt.Errorf("cannot marshal unknown type %d", v.typ)
}

// MarshalYAML encodes the value as a tagged YAML scalar so integers and
// floats survive a round trip.
func (v Value) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.ScalarNode, Value: v.String()}
	switch v.typ {
	case TypeInt:
		node.Tag = "!!int"
	case TypeFloat:
		node.Tag = "!!float"
		f := float64(v.floatVal)
		switch {
		case math.IsNaN(f):
			node.Value = ".nan"
		case math.IsInf(f, 1):
			node.Value = ".inf"
		case math.IsInf(f, -1):
			node.Value = "-.inf"
		}
	case TypeBool:
		node.Tag = "!!bool"
	default:
		return nil, fmt.Errorf("cannot marshal unknown type %d", v.typ)
	}
	return node, nil
}
