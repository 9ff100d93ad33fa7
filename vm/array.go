package vm

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/chazu/doml/pkg/ir"
)

// Array is a fixed-length homogeneous array created by PUSH_ARRAY. Every
// element has the kind matching the array's element type; unset elements
// hold that type's zero value.
type Array struct {
	elem  ir.ParamType
	items []Value
}

// MaxArrayLength bounds PUSH_ARRAY so a corrupt length operand fails as a
// malformed instruction instead of exhausting memory.
const MaxArrayLength = 1 << 20

// NewArray materializes an array of length zero-valued elements.
// Collection element types (MAP, VEC) cannot be flattened and are rejected.
func NewArray(elem ir.ParamType, length int) (*Array, error) {
	if !elem.Valid() {
		return nil, fmt.Errorf("%w: invalid element type %d", ErrMalformedInstruction, uint8(elem))
	}
	if elem.IsCollection() {
		return nil, fmt.Errorf("%w: %s cannot be an array element type", ErrMalformedInstruction, elem)
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative array length %d", ErrMalformedInstruction, length)
	}
	if length > MaxArrayLength {
		return nil, fmt.Errorf("%w: array length %d exceeds %d", ErrMalformedInstruction, length, MaxArrayLength)
	}

	zero := zeroValue(elem)
	items := make([]Value, length)
	for i := range items {
		items[i] = zero
	}
	return &Array{elem: elem, items: items}, nil
}

func zeroValue(elem ir.ParamType) Value {
	switch elem {
	case ir.TypeInt:
		return Int(0)
	case ir.TypeFloat:
		return Float(0)
	case ir.TypeDecimal:
		return Decimal(apd.New(0, 0))
	case ir.TypeString:
		return Text("")
	case ir.TypeBool:
		return Bool(false)
	default:
		return Nil
	}
}

// Elem returns the element type.
func (a *Array) Elem() ir.ParamType { return a.elem }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// Get returns element i.
func (a *Array) Get(i int) (Value, error) {
	if i < 0 || i >= len(a.items) {
		return Nil, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, len(a.items))
	}
	return a.items[i], nil
}

// Set stores v at element i after coercing it to the element type.
func (a *Array) Set(i int, v Value) error {
	if i < 0 || i >= len(a.items) {
		return fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, i, len(a.items))
	}
	c, ok := coerce(v, a.elem)
	if !ok {
		return fmt.Errorf("%w: cannot store %s in %s array", ErrElementType, v.Kind(), a.elem)
	}
	a.items[i] = c
	return nil
}

// CopyFrom writes values into the array in order starting at element 0.
// Nothing is written unless every value fits.
func (a *Array) CopyFrom(values []Value) error {
	if len(values) > len(a.items) {
		return fmt.Errorf("%w: %d values into length %d", ErrIndexOutOfRange, len(values), len(a.items))
	}
	coerced := make([]Value, len(values))
	for i, v := range values {
		c, ok := coerce(v, a.elem)
		if !ok {
			return fmt.Errorf("%w: element %d: cannot store %s in %s array", ErrElementType, i, v.Kind(), a.elem)
		}
		coerced[i] = c
	}
	copy(a.items, coerced)
	return nil
}

// Slice returns the elements as a typed Go slice: []int64, []float64,
// []*apd.Decimal, []string, []bool, or []any for OBJ.
func (a *Array) Slice() any {
	switch a.elem {
	case ir.TypeInt:
		out := make([]int64, len(a.items))
		for i, v := range a.items {
			out[i], _ = v.AsInt()
		}
		return out
	case ir.TypeFloat:
		out := make([]float64, len(a.items))
		for i, v := range a.items {
			out[i], _ = v.AsFloat()
		}
		return out
	case ir.TypeDecimal:
		out := make([]*apd.Decimal, len(a.items))
		for i, v := range a.items {
			out[i], _ = v.AsDecimal()
		}
		return out
	case ir.TypeString:
		out := make([]string, len(a.items))
		for i, v := range a.items {
			out[i], _ = v.AsText()
		}
		return out
	case ir.TypeBool:
		out := make([]bool, len(a.items))
		for i, v := range a.items {
			out[i], _ = v.AsBool()
		}
		return out
	default:
		out := make([]any, len(a.items))
		for i, v := range a.items {
			out[i] = v.Interface()
		}
		return out
	}
}

// String renders the array as "INT[1 2 3]".
func (a *Array) String() string {
	parts := make([]string, len(a.items))
	for i, v := range a.items {
		parts[i] = v.String()
	}
	return a.elem.String() + "[" + strings.Join(parts, " ") + "]"
}

// coerce converts v to the kind required by elem. Ints widen to floats and
// decimals; floats widen to decimals. OBJ accepts any reference value.
func coerce(v Value, elem ir.ParamType) (Value, bool) {
	switch elem {
	case ir.TypeInt:
		return v, v.Kind() == KindInt
	case ir.TypeFloat:
		switch v.Kind() {
		case KindFloat:
			return v, true
		case KindInt:
			n, _ := v.AsInt()
			return Float(float64(n)), true
		}
	case ir.TypeDecimal:
		switch v.Kind() {
		case KindDecimal:
			return v, true
		case KindInt:
			n, _ := v.AsInt()
			return Decimal(apd.New(n, 0)), true
		case KindFloat:
			f, _ := v.AsFloat()
			d, err := new(apd.Decimal).SetFloat64(f)
			if err != nil {
				return Nil, false
			}
			return Decimal(d), true
		}
	case ir.TypeString:
		return v, v.Kind() == KindText
	case ir.TypeBool:
		return v, v.Kind() == KindBool
	case ir.TypeObject:
		return v, v.Kind().IsReference()
	}
	return Nil, false
}
