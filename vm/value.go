package vm

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"github.com/chazu/doml/pkg/ir"
)

// Kind tags the dynamic type held by a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindInt
	KindFloat
	KindDecimal
	KindText
	KindBool
	KindObject
	KindArray
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// IsReference reports whether values of this kind may live in a register.
func (k Kind) IsReference() bool {
	return k == KindNil || k == KindObject || k == KindArray
}

// Value is a tagged union over the values a stack slot or register can hold.
// The zero Value is Nil.
type Value struct {
	kind Kind
	num  int64
	flt  float64
	dec  *apd.Decimal
	str  string
	ref  any
}

// Nil is the empty value.
var Nil = Value{}

// Int returns an integer value.
func Int(n int64) Value { return Value{kind: KindInt, num: n} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, flt: f} }

// Decimal returns a decimal value holding a copy of d.
func Decimal(d *apd.Decimal) Value {
	c := new(apd.Decimal)
	if d != nil {
		c.Set(d)
	}
	return Value{kind: KindDecimal, dec: c}
}

// Text returns a string value.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// Object wraps a host object reference. A nil object is Nil.
func Object(obj any) Value {
	if obj == nil {
		return Nil
	}
	return Value{kind: KindObject, ref: obj}
}

// ArrayValue wraps an array reference. A nil array is Nil.
func ArrayValue(a *Array) Value {
	if a == nil {
		return Nil
	}
	return Value{kind: KindArray, ref: a}
}

// ValueOf converts a Go value to a Value. Integers, floats, decimals,
// strings and booleans map to their scalar kinds; a Value or *Array is
// passed through; anything else becomes an object reference. An unsigned
// integer above math.MaxInt64 has no INT form and stays an object; use
// Convert to reject it instead.
func ValueOf(x any) Value {
	v, err := Convert(x)
	if err != nil {
		return Object(x)
	}
	return v
}

// Convert is ValueOf with range checking: unsigned integers that do not
// fit in an INT fail with ErrMalformedInstruction.
func Convert(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Nil, nil
	case Value:
		return v, nil
	case *Array:
		return ArrayValue(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint:
		return unsigned(uint64(v))
	case uint64:
		return unsigned(v)
	case uintptr:
		return unsigned(uint64(v))
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case *apd.Decimal:
		return Decimal(v), nil
	case apd.Decimal:
		return Decimal(&v), nil
	case string:
		return Text(v), nil
	case bool:
		return Bool(v), nil
	default:
		return Object(v), nil
	}
}

func unsigned(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Nil, fmt.Errorf("%w: %d overflows INT", ErrMalformedInstruction, u)
	}
	return Int(int64(u)), nil
}

// Kind returns the value's tag.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether v is Nil.
func (v Value) IsNil() bool { return v.kind == KindNil }

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) {
	return v.num, v.kind == KindInt
}

// AsFloat returns the float payload.
func (v Value) AsFloat() (float64, bool) {
	return v.flt, v.kind == KindFloat
}

// AsDecimal returns a copy of the decimal payload.
func (v Value) AsDecimal() (*apd.Decimal, bool) {
	if v.kind != KindDecimal {
		return nil, false
	}
	return new(apd.Decimal).Set(v.dec), true
}

// AsText returns the string payload.
func (v Value) AsText() (string, bool) {
	return v.str, v.kind == KindText
}

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	return v.num != 0, v.kind == KindBool
}

// AsObject returns the host object reference.
func (v Value) AsObject() (any, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.ref, true
}

// AsArray returns the array reference.
func (v Value) AsArray() (*Array, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.ref.(*Array), true
}

// Interface returns the Go representation of the value: int64, float64,
// a copy of the *apd.Decimal, string, bool, the host object, *Array, or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindDecimal:
		return new(apd.Decimal).Set(v.dec)
	case KindText:
		return v.str
	case KindBool:
		return v.num != 0
	case KindObject, KindArray:
		return v.ref
	default:
		return nil
	}
}

// Equal reports whether two values have the same kind and payload.
// Objects and arrays compare by reference.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindInt, KindBool:
		return v.num == o.num
	case KindFloat:
		return v.flt == o.flt
	case KindDecimal:
		return v.dec.Cmp(o.dec) == 0
	case KindText:
		return v.str == o.str
	default:
		return v.ref == o.ref
	}
}

// ParamType returns the element type matching the value's kind. Nil maps to
// OBJ since an empty reference fits any object slot.
func (v Value) ParamType() ir.ParamType {
	switch v.kind {
	case KindInt:
		return ir.TypeInt
	case KindFloat:
		return ir.TypeFloat
	case KindDecimal:
		return ir.TypeDecimal
	case KindText:
		return ir.TypeString
	case KindBool:
		return ir.TypeBool
	case KindArray:
		return ir.TypeVector
	default:
		return ir.TypeObject
	}
}

// String renders the value for diagnostics and disassembly.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	case KindDecimal:
		return v.dec.String()
	case KindText:
		return strconv.Quote(v.str)
	case KindBool:
		return strconv.FormatBool(v.num != 0)
	case KindArray:
		return v.ref.(*Array).String()
	default:
		return fmt.Sprintf("<%T>", v.ref)
	}
}
