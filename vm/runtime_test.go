package vm

import (
	"errors"
	"testing"

	"github.com/cockroachdb/apd/v3"
)

func TestPushPopTypedRoundTrip(t *testing.T) {
	rt := NewRuntime()

	rt.Push(Int(5), true)
	if n, ok := Pop[int64](rt); !ok || n != 5 {
		t.Errorf("Pop[int64] = %d, %v", n, ok)
	}

	rt.Push(Float(2.5), true)
	if f, ok := Pop[float64](rt); !ok || f != 2.5 {
		t.Errorf("Pop[float64] = %v, %v", f, ok)
	}

	rt.Push(Text("x"), true)
	if s, ok := Pop[string](rt); !ok || s != "x" {
		t.Errorf("Pop[string] = %q, %v", s, ok)
	}

	rt.Push(Bool(true), true)
	if b, ok := Pop[bool](rt); !ok || !b {
		t.Errorf("Pop[bool] = %v, %v", b, ok)
	}

	rt.Push(Decimal(apd.New(125, -2)), true)
	if d, ok := Pop[*apd.Decimal](rt); !ok || d.String() != "1.25" {
		t.Errorf("Pop[*apd.Decimal] = %v, %v", d, ok)
	}

	p := &point{1, 2}
	rt.Push(Object(p), true)
	if got, ok := Pop[*point](rt); !ok || got != p {
		t.Errorf("Pop[*point] = %v, %v", got, ok)
	}

	if rt.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", rt.Depth())
	}
}

func TestPeekDecimalDoesNotAlias(t *testing.T) {
	rt := NewRuntime()
	rt.Push(Decimal(apd.New(125, -2)), true)

	d, _ := Peek[*apd.Decimal](rt)
	d.SetInt64(0)

	if got, ok := Pop[*apd.Decimal](rt); !ok || got.String() != "1.25" {
		t.Errorf("decimal after mutating peeked copy = %v, want 1.25", got)
	}
}

func TestPopNarrowsIntegers(t *testing.T) {
	rt := NewRuntime()
	rt.Push(Int(7), true)
	if n, ok := Pop[int](rt); !ok || n != 7 {
		t.Errorf("Pop[int] = %d, %v", n, ok)
	}
	rt.Push(Int(7), true)
	if n, ok := Pop[int32](rt); !ok || n != 7 {
		t.Errorf("Pop[int32] = %d, %v", n, ok)
	}
	rt.Push(Float(1.5), true)
	if f, ok := Pop[float32](rt); !ok || f != 1.5 {
		t.Errorf("Pop[float32] = %v, %v", f, ok)
	}
}

func TestPopEmptyStack(t *testing.T) {
	rt := NewRuntime()
	for n := 0; n < 3; n++ {
		if _, ok := Pop[int64](rt); ok {
			t.Fatal("Pop on empty stack succeeded")
		}
		if _, ok := Peek[Value](rt); ok {
			t.Fatal("Peek on empty stack succeeded")
		}
		if rt.Drop() {
			t.Fatal("Drop on empty stack succeeded")
		}
		if rt.Depth() != 0 {
			t.Fatalf("Depth() = %d after failed pops", rt.Depth())
		}
	}
	if err := rt.PopError("int"); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("PopError = %v, want ErrStackUnderflow", err)
	}
}

func TestPopTypeMismatchLeavesStack(t *testing.T) {
	rt := NewRuntime()
	rt.Push(Text("x"), true)

	if _, ok := Pop[int64](rt); ok {
		t.Fatal("Pop[int64] on text succeeded")
	}
	if rt.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", rt.Depth())
	}
	if s, ok := Peek[string](rt); !ok || s != "x" {
		t.Errorf("Peek[string] = %q, %v", s, ok)
	}
	if err := rt.PopError("int"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("PopError = %v, want ErrTypeMismatch", err)
	}
}

func TestUntypedWidening(t *testing.T) {
	rt := NewRuntime()

	rt.Push(Int(3), false)
	if f, ok := Pop[float64](rt); !ok || f != 3 {
		t.Errorf("untyped Pop[float64] = %v, %v", f, ok)
	}

	rt.Push(Float(0.5), false)
	if d, ok := Pop[*apd.Decimal](rt); !ok || d.String() != "0.5" {
		t.Errorf("untyped Pop[*apd.Decimal] = %v, %v", d, ok)
	}

	rt.Push(Int(3), true)
	if _, ok := Pop[float64](rt); ok {
		t.Error("typed int widened to float64")
	}
}

func TestBoundedStack(t *testing.T) {
	rt := NewRuntime()
	if err := rt.ReserveStack(2); err != nil {
		t.Fatal(err)
	}
	if !rt.Push(Int(1), true) || !rt.Push(Int(2), true) {
		t.Fatal("push within capacity failed")
	}
	if rt.Push(Int(3), true) {
		t.Error("push beyond capacity succeeded")
	}
	if rt.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", rt.Depth())
	}
}

func TestUnboundedStackGrows(t *testing.T) {
	rt := NewRuntime()
	for n := 0; n < defaultStackSize*3; n++ {
		if !rt.Push(Int(int64(n)), true) {
			t.Fatalf("push %d failed on unbounded stack", n)
		}
	}
	if n, _ := Pop[int64](rt); n != defaultStackSize*3-1 {
		t.Errorf("top = %d", n)
	}
}

func TestNegativeCapacity(t *testing.T) {
	rt := NewRuntime()
	if err := rt.ReserveStack(-1); !errors.Is(err, ErrNegativeCapacity) {
		t.Errorf("ReserveStack(-1) = %v", err)
	}
	if err := rt.ReserveRegisters(-1); !errors.Is(err, ErrNegativeCapacity) {
		t.Errorf("ReserveRegisters(-1) = %v", err)
	}
}

func TestRegisters(t *testing.T) {
	rt := NewRuntime()
	if err := rt.ReserveRegisters(2); err != nil {
		t.Fatal(err)
	}

	p := &point{3, 4}
	if err := rt.SetObject(Object(p), Indexed(1)); err != nil {
		t.Fatalf("SetObject: %v", err)
	}
	v, err := rt.GetObject(Indexed(1))
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	if obj, _ := v.AsObject(); obj != p {
		t.Errorf("register 1 = %v, want %v", obj, p)
	}

	if err := rt.SetObject(Int(1), Indexed(0)); !errors.Is(err, ErrNotReference) {
		t.Errorf("scalar SetObject = %v, want ErrNotReference", err)
	}
	if err := rt.SetObject(Object(p), Indexed(2)); !errors.Is(err, ErrRegisterOutOfRange) {
		t.Errorf("SetObject(r2) = %v, want ErrRegisterOutOfRange", err)
	}
	if _, err := rt.GetObject(Indexed(5)); !errors.Is(err, ErrRegisterOutOfRange) {
		t.Errorf("GetObject(r5) = %v, want ErrRegisterOutOfRange", err)
	}
}

func TestCurrentRegister(t *testing.T) {
	rt := NewRuntime()
	p := &point{}

	// Current is usable without a register file.
	if err := rt.SetObject(Object(p), Current); err != nil {
		t.Fatalf("SetObject(Current): %v", err)
	}
	v, _ := rt.GetObject(RegisterFromIndex(-1))
	if obj, _ := v.AsObject(); obj != p {
		t.Error("RegisterFromIndex(-1) should alias the current object")
	}
	if rt.RegisterCapacity() != 0 {
		t.Error("Current should not occupy a register slot")
	}
}

func TestReinitIsClean(t *testing.T) {
	fresh := NewRuntime()

	rt := NewRuntime()
	rt.ReserveRegisters(4)
	rt.ReserveStack(16)
	rt.Push(Int(1), true)
	rt.SetObject(Object(&point{}), Indexed(0))

	rt.ClearRegisters()
	rt.ClearStack()
	rt.ReserveRegisters(4)
	rt.ReserveStack(16)

	if rt.Depth() != 0 || rt.StackCapacity() != 16 || rt.RegisterCapacity() != 4 {
		t.Errorf("after reinit: depth=%d stack=%d registers=%d",
			rt.Depth(), rt.StackCapacity(), rt.RegisterCapacity())
	}
	for n := 0; n < 4; n++ {
		if v, _ := rt.GetObject(Indexed(n)); !v.IsNil() {
			t.Errorf("register %d = %s, want nil", n, v)
		}
	}

	rt.ClearRegisters()
	rt.ClearStack()
	if rt.Depth() != fresh.Depth() || rt.StackCapacity() != fresh.StackCapacity() ||
		rt.RegisterCapacity() != fresh.RegisterCapacity() {
		t.Error("cleared runtime differs from a fresh one")
	}
}

func TestResetStackKeepsCapacity(t *testing.T) {
	rt := NewRuntime()
	rt.ReserveStack(3)
	rt.Push(Int(1), true)
	rt.ResetStack()
	if rt.Depth() != 0 || rt.StackCapacity() != 3 {
		t.Errorf("depth=%d cap=%d", rt.Depth(), rt.StackCapacity())
	}
}

func TestRuntimeReport(t *testing.T) {
	rt := NewRuntime()
	rt.Errorf("image.Point", "bad %d", 1) // no sink: discarded

	var c Collector
	rt.SetSink(&c)
	rt.Errorf("image.Point", "bad %d", 2)

	diags := c.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	if diags[0].String() != "error: bad 2 (image.Point)" {
		t.Errorf("diagnostic = %q", diags[0])
	}
}
