package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ManitVig/scriptx/pkg/token"
	"gopkg.in/yaml.v3"
)

func TestFromToken(t *testing.T) {
	tests := []struct {
		tok  token.Token
		want Value
	}{
		{token.Token{Type: token.Number, Value: "5"}, NewInt(5)},
		{token.Token{Type: token.Number, Value: "0"}, NewInt(0)},
		{token.Token{Type: token.Number, Value: "007"}, NewInt(7)},
		{token.Token{Type: token.Number, Value: "2147483647"}, NewInt(math.MaxInt32)},
		{token.Token{Type: token.Number, Value: "3.14"}, NewFloat(3.14)},
		{token.Token{Type: token.Number, Value: "10."}, NewFloat(10)},
		{token.Token{Type: token.Number, Value: "5.0"}, NewFloat(5)},
		{token.Token{Type: token.True, Value: "true"}, NewBool(true)},
		{token.Token{Type: token.False, Value: "false"}, NewBool(false)},
	}

	for _, tt := range tests {
		t.Run(tt.tok.Value, func(t *testing.T) {
			got, err := FromToken(tt.tok)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v (%s), want %v (%s)", got, got.Type(), tt.want, tt.want.Type())
			}
		})
	}
}

func TestFromTokenInvalidLiteral(t *testing.T) {
	tests := []token.Token{
		{Type: token.Number, Value: "1.2.3"},
		{Type: token.Number, Value: "2147483648"},
		{Type: token.Number, Value: "99999999999999999999"},
		{Type: token.Ident, Value: "x"},
		{Type: token.Plus, Value: "+"},
		{Type: token.EOF},
	}

	for _, tok := range tests {
		t.Run(tok.String(), func(t *testing.T) {
			_, err := FromToken(tok)
			if !IsKind(err, KindInvalidLiteral) {
				t.Errorf("got %v, want InvalidLiteralError", err)
			}
		})
	}
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		text string
		want Value
	}{
		{"true", NewBool(true)},
		{"false", NewBool(false)},
		{"-3", NewInt(-3)},
		{"+3", NewInt(3)},
		{"2.5", NewFloat(2.5)},
		{"-0.5", NewFloat(-0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseLiteral(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "True", "abc", "1e5", "1.2.3"} {
		if _, err := ParseLiteral(bad); !IsKind(err, KindInvalidLiteral) {
			t.Errorf("ParseLiteral(%q): got %v, want InvalidLiteralError", bad, err)
		}
	}
}

func TestIntegerArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   func(Value, Value) (Value, error)
		a, b int32
		want int32
	}{
		{"add", Add, 2, 3, 5},
		{"subtract", Subtract, 2, 3, -1},
		{"multiply", Multiply, 4, 5, 20},
		{"divide", Divide, 10, 3, 3},
		{"divide negative truncates", Divide, -7, 2, -3},
		{"divide negative divisor", Divide, 7, -2, -3},
		{"add wraps", Add, math.MaxInt32, 1, math.MinInt32},
		{"multiply wraps", Multiply, math.MaxInt32, 2, -2},
		{"min divided by minus one", Divide, math.MinInt32, -1, math.MinInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op(NewInt(tt.a), NewInt(tt.b))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(NewInt(tt.want)) {
				t.Errorf("got %v (%s), want integer %d", got, got.Type(), tt.want)
			}
		})
	}
}

func TestIntegerDivisionMatchesNative(t *testing.T) {
	values := []int32{math.MinInt32, -1000, -7, -3, -1, 0, 1, 2, 3, 7, 1000, math.MaxInt32}

	for _, a := range values {
		for _, b := range values {
			if b == 0 {
				continue
			}
			got, err := Divide(NewInt(a), NewInt(b))
			if err != nil {
				t.Fatalf("%d / %d: unexpected error: %v", a, b, err)
			}
			if got.AsInt() != a/b {
				t.Errorf("%d / %d: got %v, want %d", a, b, got, a/b)
			}
		}
	}
}

func TestDivideByZero(t *testing.T) {
	_, err := Divide(NewInt(1), NewInt(0))
	if !IsKind(err, KindZeroDivision) {
		t.Fatalf("got %v, want ZeroDivisionError", err)
	}

	got, err := Divide(NewFloat(1), NewInt(0))
	if err != nil {
		t.Fatalf("float division: unexpected error: %v", err)
	}
	if !math.IsInf(float64(got.AsFloat()), 1) {
		t.Errorf("got %v, want +Inf", got)
	}
}

func TestMixedArithmeticPromotesToFloat(t *testing.T) {
	ops := map[string]func(Value, Value) (Value, error){
		"add":      Add,
		"subtract": Subtract,
		"multiply": Multiply,
		"divide":   Divide,
	}
	pairs := [][2]Value{
		{NewInt(3), NewFloat(1.5)},
		{NewFloat(1.5), NewInt(3)},
		{NewFloat(2), NewFloat(0.5)},
		{NewInt(-4), NewFloat(8)},
	}

	for name, op := range ops {
		for _, p := range pairs {
			got, err := op(p[0], p[1])
			if err != nil {
				t.Fatalf("%s(%v, %v): unexpected error: %v", name, p[0], p[1], err)
			}
			if got.Type() != TypeFloat {
				t.Errorf("%s(%v, %v): got %s, want float", name, p[0], p[1], got.Type())
			}
		}
	}

	got, _ := Add(NewInt(3), NewFloat(1.5))
	if !got.Equal(NewFloat(4.5)) {
		t.Errorf("3 + 1.5: got %v, want 4.5", got)
	}
	got, _ = Divide(NewInt(7), NewFloat(2))
	if !got.Equal(NewFloat(3.5)) {
		t.Errorf("7 / 2.0: got %v, want 3.5", got)
	}
	got, _ = Subtract(NewFloat(1.5), NewInt(3))
	if !got.Equal(NewFloat(-1.5)) {
		t.Errorf("1.5 - 3: got %v, want -1.5", got)
	}
}

func TestBooleanOperandsAreTypeErrors(t *testing.T) {
	ops := map[string]func(Value, Value) (Value, error){
		"addition":       Add,
		"subtraction":    Subtract,
		"multiplication": Multiply,
		"division":       Divide,
	}
	pairs := [][2]Value{
		{NewBool(true), NewInt(1)},
		{NewInt(1), NewBool(false)},
		{NewBool(true), NewFloat(1)},
		{NewFloat(1), NewBool(true)},
		{NewBool(true), NewBool(false)},
	}

	for name, op := range ops {
		for _, p := range pairs {
			_, err := op(p[0], p[1])
			if !IsKind(err, KindType) {
				t.Fatalf("%s(%v, %v): got %v, want TypeError", name, p[0], p[1], err)
			}
			want := "TypeError: the operation " + name + " is not defined for boolean"
			if err.Error() != want {
				t.Errorf("got %q, want %q", err.Error(), want)
			}
		}
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NewInt(-12), "-12"},
		{NewFloat(4.5), "4.5"},
		{NewFloat(4), "4.0"},
		{NewFloat(0.1), "0.1"},
		{NewBool(true), "true"},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestEqualIsStrict(t *testing.T) {
	if NewInt(1).Equal(NewFloat(1)) {
		t.Error("integer 1 should not equal float 1.0")
	}
	if NewBool(false).Equal(NewInt(0)) {
		t.Error("false should not equal 0")
	}
	if !NewFloat(2.5).Equal(NewFloat(2.5)) {
		t.Error("2.5 should equal 2.5")
	}
}

func TestMarshalJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Value{"f": NewFloat(2), "i": NewInt(3), "b": NewBool(false)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"b":false,"f":2.0,"i":3}` {
		t.Errorf("got %s", b)
	}
}

func TestMarshalYAMLKeepsTypes(t *testing.T) {
	out, err := yaml.Marshal(map[string]Value{"f": NewFloat(2), "i": NewInt(3)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back map[string]interface{}
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := back["f"].(float64); !ok {
		t.Errorf("f decoded as %T, want float64 (yaml: %s)", back["f"], out)
	}
	if _, ok := back["i"].(int); !ok {
		t.Errorf("i decoded as %T, want int (yaml: %s)", back["i"], out)
	}
}
