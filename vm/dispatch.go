package vm

import (
	"fmt"

	"github.com/chazu/doml/pkg/ir"
)

// dispatch executes one instruction whose opcode has defined behavior.
// Operands are asserted directly: safe mode has validated them already and
// unsafe mode trusts the producer.
func (i *Interpreter) dispatch(in ir.Instruction, mode Mode) error {
	rt := i.rt

	switch in.Op() {
	// =====================================================================
	// System
	// =====================================================================

	case ir.OpNop:
		return nil

	case ir.OpInit:
		stackSize := in.Param(0).(int)
		registerSize := in.Param(1).(int)
		if err := rt.ReserveRegisters(registerSize); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedInstruction, err)
		}
		if err := rt.ReserveStack(stackSize); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedInstruction, err)
		}
		return nil

	case ir.OpDeInit:
		rt.ClearRegisters()
		rt.ClearStack()
		return nil

	// =====================================================================
	// Stack
	// =====================================================================

	case ir.OpNewObj, ir.OpCallN:
		b := in.Param(0).(Binding)
		b.Bind(rt, RegisterFromIndex(in.Param(1).(int)))
		return nil

	case ir.OpGetN:
		b := in.Param(1).(Binding)
		b.Bind(rt, RegisterFromIndex(in.Param(0).(int)))
		return nil

	case ir.OpCallStack, ir.OpGetStack:
		return i.callOnStack(in.Param(0).(Binding), mode)

	case ir.OpPush:
		count := in.Param(0).(int)
		for n := 0; n < count; n++ {
			v, err := Convert(in.Param(n + 1))
			if err != nil {
				return err
			}
			if !rt.Push(v, true) {
				return fmt.Errorf("%w: pushed %d of %d values (capacity %d)",
					ErrStackOverflow, n, count, rt.StackCapacity())
			}
		}
		return nil

	case ir.OpPop:
		count := in.Param(0).(int)
		failed := 0
		for n := 0; n < count; n++ {
			if !rt.Drop() {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%w: %d of %d pops failed", ErrStackUnderflow, failed, count)
		}
		return nil

	// =====================================================================
	// Array
	// =====================================================================

	case ir.OpPushArray:
		arr, err := NewArray(in.Param(0).(ir.ParamType), in.Param(1).(int))
		if err != nil {
			return err
		}
		if !rt.Push(ArrayValue(arr), true) {
			return fmt.Errorf("%w: no room for %s array", ErrStackOverflow, arr.Elem())
		}
		return nil

	case ir.OpSetArray:
		index := in.Param(0).(int)
		v, ok := Pop[Value](rt)
		if !ok {
			return rt.PopError("value")
		}
		arr, err := i.topArray()
		if err != nil {
			return err
		}
		return arr.Set(index, v)

	case ir.OpGetArray:
		arr, err := i.topArray()
		if err != nil {
			return err
		}
		v, err := arr.Get(in.Param(0).(int))
		if err != nil {
			return err
		}
		if !rt.Push(v, true) {
			return fmt.Errorf("%w: no room for element", ErrStackOverflow)
		}
		return nil

	case ir.OpArrayCpy:
		list := in.Param(0).([]any)
		arr, err := i.topArray()
		if err != nil {
			return err
		}
		rt.Drop()
		values := make([]Value, len(list))
		for n, x := range list {
			v, err := Convert(x)
			if err != nil {
				return err
			}
			values[n] = v
		}
		return arr.CopyFrom(values)

	case ir.OpCompact:
		return nil
	}

	return fmt.Errorf("%w: %s has no handler", ErrUnsupportedInstruction, in.Op())
}

// callOnStack pops the call target, binds it as the current object, invokes
// b against it and pushes the current object back.
func (i *Interpreter) callOnStack(b Binding, mode Mode) error {
	rt := i.rt

	var target Value
	if mode == Safe {
		v, ok := rt.PopObject()
		if !ok {
			return rt.PopError("object")
		}
		target = v
	} else {
		v, ok := Pop[Value](rt)
		if !ok {
			return rt.PopError("object")
		}
		target = v
	}

	if err := rt.SetObject(target, Current); err != nil {
		return err
	}
	b.Bind(rt, Current)

	obj, _ := rt.GetObject(Current)
	if !rt.Push(obj, true) {
		return fmt.Errorf("%w: cannot push call target back", ErrStackOverflow)
	}
	return nil
}

// topArray returns the array at the top of the stack without popping it.
// A non-array on top is a type mismatch in both modes.
func (i *Interpreter) topArray() (*Array, error) {
	arr, ok := Peek[*Array](i.rt)
	if !ok {
		return nil, i.rt.PopError("array")
	}
	return arr, nil
}
