package vm

import (
	"errors"
	"math"
	"testing"

	"github.com/cockroachdb/apd/v3"

	"github.com/chazu/doml/pkg/ir"
)

type point struct{ X, Y int }

func TestValueOfKinds(t *testing.T) {
	obj := &point{1, 2}
	arr, _ := NewArray(ir.TypeInt, 2)

	tests := []struct {
		in   any
		want Kind
	}{
		{nil, KindNil},
		{7, KindInt},
		{int32(7), KindInt},
		{uint16(7), KindInt},
		{uint(7), KindInt},
		{uint64(math.MaxInt64), KindInt},
		{uintptr(7), KindInt},
		{uint64(math.MaxUint64), KindObject},
		{int64(7), KindInt},
		{1.5, KindFloat},
		{float32(1.5), KindFloat},
		{apd.New(15, -1), KindDecimal},
		{"hi", KindText},
		{true, KindBool},
		{obj, KindObject},
		{arr, KindArray},
		{Int(3), KindInt},
	}

	for _, tt := range tests {
		if got := ValueOf(tt.in).Kind(); got != tt.want {
			t.Errorf("ValueOf(%#v).Kind() = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestValueAccessors(t *testing.T) {
	if n, ok := Int(42).AsInt(); !ok || n != 42 {
		t.Errorf("AsInt = %d, %v", n, ok)
	}
	if _, ok := Int(42).AsFloat(); ok {
		t.Error("Int should not be readable as float")
	}
	if s, ok := Text("x").AsText(); !ok || s != "x" {
		t.Errorf("AsText = %q, %v", s, ok)
	}
	if b, ok := Bool(true).AsBool(); !ok || !b {
		t.Errorf("AsBool = %v, %v", b, ok)
	}
	if _, ok := Nil.AsObject(); ok {
		t.Error("Nil should not be an object")
	}
	if Object(nil) != Nil {
		t.Error("Object(nil) should be Nil")
	}
	if ArrayValue(nil) != Nil {
		t.Error("ArrayValue(nil) should be Nil")
	}
}

func TestDecimalIsCopied(t *testing.T) {
	d := apd.New(150, -2)
	v := Decimal(d)
	d.SetInt64(9)

	got, _ := v.AsDecimal()
	if got.String() != "1.50" {
		t.Errorf("decimal = %s, want 1.50", got)
	}
}

func TestConvertUnsigned(t *testing.T) {
	v, err := Convert(uint64(math.MaxInt64))
	if n, ok := v.AsInt(); err != nil || !ok || n != math.MaxInt64 {
		t.Errorf("Convert(MaxInt64) = %v, %v", v, err)
	}
	for _, x := range []any{uint64(math.MaxInt64) + 1, uint(math.MaxUint64), uintptr(math.MaxUint64)} {
		if _, err := Convert(x); !errors.Is(err, ErrMalformedInstruction) {
			t.Errorf("Convert(%T %v) error = %v, want ErrMalformedInstruction", x, x, err)
		}
	}
}

func TestDecimalAccessorsReturnCopies(t *testing.T) {
	v := Decimal(apd.New(150, -2))

	got, _ := v.AsDecimal()
	got.SetInt64(9)
	v.Interface().(*apd.Decimal).SetInt64(9)

	if v.String() != "1.50" {
		t.Errorf("decimal = %s after mutating copies, want 1.50", v)
	}
}

func TestValueEqual(t *testing.T) {
	obj := &point{}
	tests := []struct {
		a, b Value
		want bool
	}{
		{Nil, Nil, true},
		{Int(1), Int(1), true},
		{Int(1), Float(1), false},
		{Float(2.5), Float(2.5), true},
		{Decimal(apd.New(1, 0)), Decimal(apd.New(10, -1)), true},
		{Text("a"), Text("b"), false},
		{Bool(true), Bool(true), true},
		{Object(obj), Object(obj), true},
		{Object(obj), Object(&point{}), false},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%s.Equal(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Nil, "nil"},
		{Int(-3), "-3"},
		{Float(0.25), "0.25"},
		{Decimal(apd.New(150, -2)), "1.50"},
		{Text("x"), `"x"`},
		{Bool(false), "false"},
		{Object(&point{}), "<*vm.point>"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestValueParamType(t *testing.T) {
	if Int(1).ParamType() != ir.TypeInt {
		t.Error("Int should map to INT")
	}
	if Text("").ParamType() != ir.TypeString {
		t.Error("Text should map to STR")
	}
	if Nil.ParamType() != ir.TypeObject {
		t.Error("Nil should map to OBJ")
	}
}
