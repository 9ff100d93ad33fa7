package vm

import (
	"errors"
	"reflect"
	"testing"

	"github.com/chazu/doml/pkg/ir"
)

func TestNewArrayRejectsCollections(t *testing.T) {
	for _, elem := range []ir.ParamType{ir.TypeMap, ir.TypeVector, ir.ParamType(99)} {
		arr, err := NewArray(elem, 3)
		if arr != nil {
			t.Errorf("NewArray(%s) returned an array", elem)
		}
		if !errors.Is(err, ErrMalformedInstruction) {
			t.Errorf("NewArray(%s) error = %v, want ErrMalformedInstruction", elem, err)
		}
	}

	if _, err := NewArray(ir.TypeInt, -1); !errors.Is(err, ErrMalformedInstruction) {
		t.Errorf("negative length error = %v", err)
	}
}

func TestNewArrayLengthLimit(t *testing.T) {
	if _, err := NewArray(ir.TypeInt, MaxArrayLength); err != nil {
		t.Errorf("NewArray(MaxArrayLength) error = %v", err)
	}
	if _, err := NewArray(ir.TypeInt, MaxArrayLength+1); !errors.Is(err, ErrMalformedInstruction) {
		t.Errorf("NewArray(MaxArrayLength+1) error = %v, want ErrMalformedInstruction", err)
	}
}

func TestNewArrayZeroValues(t *testing.T) {
	tests := []struct {
		elem ir.ParamType
		want string
	}{
		{ir.TypeInt, "INT[0 0]"},
		{ir.TypeFloat, "FLT[0 0]"},
		{ir.TypeDecimal, "DEC[0 0]"},
		{ir.TypeString, `STR["" ""]`},
		{ir.TypeBool, "BOOL[false false]"},
		{ir.TypeObject, "OBJ[nil nil]"},
	}
	for _, tt := range tests {
		arr, err := NewArray(tt.elem, 2)
		if err != nil {
			t.Fatalf("NewArray(%s): %v", tt.elem, err)
		}
		if got := arr.String(); got != tt.want {
			t.Errorf("NewArray(%s) = %s, want %s", tt.elem, got, tt.want)
		}
	}
}

func TestArraySetGet(t *testing.T) {
	arr, _ := NewArray(ir.TypeInt, 5)

	if err := arr.Set(2, Int(42)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := arr.Get(2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n, _ := v.AsInt(); n != 42 {
		t.Errorf("Get(2) = %s, want 42", v)
	}

	if err := arr.Set(5, Int(1)); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Set(5) error = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := arr.Get(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Get(-1) error = %v, want ErrIndexOutOfRange", err)
	}
	if err := arr.Set(0, Text("x")); !errors.Is(err, ErrElementType) {
		t.Errorf("Set(text) error = %v, want ErrElementType", err)
	}
}

func TestArrayWidening(t *testing.T) {
	flt, _ := NewArray(ir.TypeFloat, 1)
	if err := flt.Set(0, Int(3)); err != nil {
		t.Fatalf("int into FLT: %v", err)
	}
	if v, _ := flt.Get(0); v.Kind() != KindFloat {
		t.Errorf("element kind = %s, want float", v.Kind())
	}

	dec, _ := NewArray(ir.TypeDecimal, 1)
	if err := dec.Set(0, Float(0.5)); err != nil {
		t.Fatalf("float into DEC: %v", err)
	}
	if v, _ := dec.Get(0); v.String() != "0.5" {
		t.Errorf("element = %s, want 0.5", v)
	}

	obj, _ := NewArray(ir.TypeObject, 1)
	if err := obj.Set(0, Int(1)); !errors.Is(err, ErrElementType) {
		t.Errorf("int into OBJ error = %v, want ErrElementType", err)
	}
}

func TestArrayCopyFrom(t *testing.T) {
	arr, _ := NewArray(ir.TypeString, 3)

	if err := arr.CopyFrom([]Value{Text("a"), Text("b")}); err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if got := arr.Slice(); !reflect.DeepEqual(got, []string{"a", "b", ""}) {
		t.Errorf("Slice() = %v", got)
	}

	// A bad element leaves the array untouched.
	if err := arr.CopyFrom([]Value{Text("z"), Int(1)}); !errors.Is(err, ErrElementType) {
		t.Errorf("CopyFrom error = %v, want ErrElementType", err)
	}
	if got := arr.Slice(); !reflect.DeepEqual(got, []string{"a", "b", ""}) {
		t.Errorf("Slice() after failed copy = %v", got)
	}

	if err := arr.CopyFrom(make([]Value, 4)); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("oversized CopyFrom error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestArraySliceTypes(t *testing.T) {
	ints, _ := NewArray(ir.TypeInt, 2)
	ints.Set(1, Int(9))
	if got := ints.Slice(); !reflect.DeepEqual(got, []int64{0, 9}) {
		t.Errorf("INT slice = %v", got)
	}

	bools, _ := NewArray(ir.TypeBool, 1)
	bools.Set(0, Bool(true))
	if got := bools.Slice(); !reflect.DeepEqual(got, []bool{true}) {
		t.Errorf("BOOL slice = %v", got)
	}

	objs, _ := NewArray(ir.TypeObject, 1)
	p := &point{1, 2}
	objs.Set(0, Object(p))
	if got := objs.Slice().([]any); got[0] != p {
		t.Errorf("OBJ slice = %v", got)
	}
}
