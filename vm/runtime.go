package vm

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// defaultStackSize is the initial allocation for an unbounded stack.
const defaultStackSize = 64

// slot is one stack entry. typed records whether the value was pushed with
// its declared type preserved; untyped slots allow widening on typed pops.
type slot struct {
	v     Value
	typed bool
}

// Runtime owns the value stack and the register file that instructions and
// function bindings operate on.
//
// The stack is LIFO. A capacity of zero means unbounded; a positive capacity
// set by ReserveStack makes Push fail once full. Registers hold object
// references only and are sized by ReserveRegisters. The Current register
// aliases whichever object a binding call is bound to.
//
// A Runtime is not safe for concurrent use. Bindings borrow it for the
// duration of one call and must not retain it.
type Runtime struct {
	stack    []slot
	sp       int
	stackCap int

	registers []Value
	current   Value

	sink Sink
}

// NewRuntime creates a runtime with an unbounded empty stack and no registers.
func NewRuntime() *Runtime {
	return &Runtime{
		stack: make([]slot, defaultStackSize),
	}
}

// ---------------------------------------------------------------------------
// Capacity management
// ---------------------------------------------------------------------------

// ReserveStack allocates an empty stack bounded at capacity values.
// Zero means unbounded. Prior contents are dropped.
func (rt *Runtime) ReserveStack(capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("%w: stack %d", ErrNegativeCapacity, capacity)
	}
	size := capacity
	if size == 0 {
		size = defaultStackSize
	}
	rt.stack = make([]slot, size)
	rt.sp = 0
	rt.stackCap = capacity
	return nil
}

// ClearStack drops all stack contents and removes the capacity bound.
func (rt *Runtime) ClearStack() {
	rt.stack = make([]slot, defaultStackSize)
	rt.sp = 0
	rt.stackCap = 0
}

// ResetStack drops all stack contents but keeps the capacity.
func (rt *Runtime) ResetStack() {
	for i := 0; i < rt.sp; i++ {
		rt.stack[i] = slot{}
	}
	rt.sp = 0
}

// ReserveRegisters allocates capacity empty registers. Prior contents,
// including the current object, are dropped.
func (rt *Runtime) ReserveRegisters(capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("%w: registers %d", ErrNegativeCapacity, capacity)
	}
	rt.registers = make([]Value, capacity)
	rt.current = Nil
	return nil
}

// ClearRegisters removes the register file and the current object.
func (rt *Runtime) ClearRegisters() {
	rt.registers = nil
	rt.current = Nil
}

// StackCapacity returns the stack bound, or zero if unbounded.
func (rt *Runtime) StackCapacity() int { return rt.stackCap }

// RegisterCapacity returns the number of registers.
func (rt *Runtime) RegisterCapacity() int { return len(rt.registers) }

// Depth returns the number of values on the stack.
func (rt *Runtime) Depth() int { return rt.sp }

// ---------------------------------------------------------------------------
// Stack operations
// ---------------------------------------------------------------------------

// Push appends v to the stack. typed preserves the value's declared type for
// later typed pops. Push fails only when a bounded stack is full.
func (rt *Runtime) Push(v Value, typed bool) bool {
	if rt.sp >= len(rt.stack) {
		if rt.stackCap > 0 {
			return false
		}
		// Grow the stack dynamically when unbounded
		newStack := make([]slot, len(rt.stack)*2+1)
		copy(newStack, rt.stack)
		rt.stack = newStack
	}
	rt.stack[rt.sp] = slot{v: v, typed: typed}
	rt.sp++
	return true
}

// PushAny converts x with ValueOf and pushes it typed.
func (rt *Runtime) PushAny(x any) bool {
	return rt.Push(ValueOf(x), true)
}

// Drop removes the top value without type checking. It fails only if the
// stack is empty.
func (rt *Runtime) Drop() bool {
	if rt.sp <= 0 {
		return false
	}
	rt.sp--
	rt.stack[rt.sp] = slot{}
	return true
}

func (rt *Runtime) top() (slot, bool) {
	if rt.sp <= 0 {
		return slot{}, false
	}
	return rt.stack[rt.sp-1], true
}

// Pop removes the top value and returns it as T. It fails, leaving the stack
// unchanged, if the stack is empty or the top value is not convertible to T.
//
// T may be Value (always matches), the Go representation of the value's
// kind (int64, float64, *apd.Decimal, string, bool, *Array, or the host
// object's type), or any other Go integer type for Int values. Values pushed
// untyped also widen from int to float64 and from int or float to
// *apd.Decimal.
func Pop[T any](rt *Runtime) (T, bool) {
	v, ok := Peek[T](rt)
	if !ok {
		return v, false
	}
	rt.Drop()
	return v, true
}

// Peek is Pop without removing the value.
func Peek[T any](rt *Runtime) (T, bool) {
	var zero T
	s, ok := rt.top()
	if !ok {
		return zero, false
	}
	return convert[T](s)
}

func convert[T any](s slot) (T, bool) {
	var zero T
	if _, ok := any(zero).(Value); ok {
		return any(s.v).(T), true
	}
	if x := s.v.Interface(); x != nil {
		if t, ok := x.(T); ok {
			return t, true
		}
	}

	out := &zero
	switch p := any(out).(type) {
	case *int:
		n, ok := s.v.AsInt()
		*p = int(n)
		return zero, ok
	case *int32:
		n, ok := s.v.AsInt()
		*p = int32(n)
		return zero, ok
	case *float32:
		f, ok := s.v.AsFloat()
		*p = float32(f)
		return zero, ok
	}

	if s.typed {
		return zero, false
	}
	switch p := any(out).(type) {
	case *float64:
		if n, ok := s.v.AsInt(); ok {
			*p = float64(n)
			return zero, true
		}
	case **apd.Decimal:
		if n, ok := s.v.AsInt(); ok {
			*p = apd.New(n, 0)
			return zero, true
		}
		if f, ok := s.v.AsFloat(); ok {
			d, err := new(apd.Decimal).SetFloat64(f)
			if err == nil {
				*p = d
				return zero, true
			}
		}
	}
	return zero, false
}

// PopObject pops a reference value (object or array) for use as a binding
// target.
func (rt *Runtime) PopObject() (Value, bool) {
	s, ok := rt.top()
	if !ok || (s.v.Kind() != KindObject && s.v.Kind() != KindArray) {
		return Nil, false
	}
	rt.Drop()
	return s.v, true
}

// PopError explains why a pop or peek expecting want just failed. Bindings
// use it to describe their own pop failures.
func (rt *Runtime) PopError(want string) error {
	s, ok := rt.top()
	if !ok {
		return ErrStackUnderflow
	}
	return fmt.Errorf("%w: top is %s, want %s", ErrTypeMismatch, s.v.Kind(), want)
}

// ---------------------------------------------------------------------------
// Register operations
// ---------------------------------------------------------------------------

// SetObject stores v in register r. Only Nil, objects and arrays may be
// stored.
func (rt *Runtime) SetObject(v Value, r Register) error {
	if !v.Kind().IsReference() {
		return fmt.Errorf("%w: got %s", ErrNotReference, v.Kind())
	}
	if r.IsCurrent() {
		rt.current = v
		return nil
	}
	if r.Index() < 0 || r.Index() >= len(rt.registers) {
		return fmt.Errorf("%w: %s, capacity %d", ErrRegisterOutOfRange, r, len(rt.registers))
	}
	rt.registers[r.Index()] = v
	return nil
}

// GetObject returns the value held in register r.
func (rt *Runtime) GetObject(r Register) (Value, error) {
	if r.IsCurrent() {
		return rt.current, nil
	}
	if r.Index() < 0 || r.Index() >= len(rt.registers) {
		return Nil, fmt.Errorf("%w: %s, capacity %d", ErrRegisterOutOfRange, r, len(rt.registers))
	}
	return rt.registers[r.Index()], nil
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

// SetSink sets where Report forwards diagnostics. A nil sink discards them.
func (rt *Runtime) SetSink(s Sink) { rt.sink = s }

// Report forwards a diagnostic to the runtime's sink. Bindings use it to
// report their own failures.
func (rt *Runtime) Report(d Diagnostic) {
	if rt.sink != nil {
		rt.sink.Report(d)
	}
}

// Errorf reports an Error-severity diagnostic with a formatted message.
func (rt *Runtime) Errorf(owner, format string, args ...any) {
	rt.Report(Diagnostic{
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Owner:    owner,
		Index:    -1,
	})
}
