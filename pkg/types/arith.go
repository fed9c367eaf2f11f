package types

// Add returns left + right.
func Add(left, right Value) (Value, error) {
	return arith("addition", left, right,
		func(a, b int32) (int32, error) { return a + b, nil },
		func(a, b float32) float32 { return a + b })
}

// Subtract returns left - right.
func Subtract(left, right Value) (Value, error) {
	return arith("subtraction", left, right,
		func(a, b int32) (int32, error) { return a - b, nil },
		func(a, b float32) float32 { return a - b })
}

// Multiply returns left * right.
func Multiply(left, right Value) (Value, error) {
	return arith("multiplication", left, right,
		func(a, b int32) (int32, error) { return a * b, nil },
		func(a, b float32) float32 { return a * b })
}

// Divide returns left / right. Integer division truncates toward zero and
// fails on a zero divisor; float division follows IEEE 754.
func Divide(left, right Value) (Value, error) {
	return arith("division", left, right,
		func(a, b int32) (int32, error) {
			if b == 0 {
				return 0, NewZeroDivisionError()
			}
			return a / b, nil
		},
		func(a, b float32) float32 { return a / b })
}

// arith applies an operation between two numbers. Two integers stay
// integers with wrapping int32 semantics; if either side is a float the
// integer side is widened and the result is a float.
func arith(operation string, left, right Value, intOp func(int32, int32) (int32, error), floatOp func(float32, float32) float32) (Value, error) {
	if !left.IsNumber() {
		return Value{}, NewTypeError(operation, left.Type())
	}
	if !right.IsNumber() {
		return Value{}, NewTypeError(operation, right.Type())
	}

	if left.typ == TypeInt && right.typ == TypeInt {
		r, err := intOp(left.intVal, right.intVal)
		if err != nil {
			return Value{}, err
		}
		return NewInt(r), nil
	}

	return NewFloat(floatOp(left.widen(), right.widen())), nil
}

// widen returns a numeric value as float32.
func (v Value) widen() float32 {
	if v.typ == TypeInt {
		return float32(v.intVal)
	}
	return v.floatVal
}
