package ir

import (
	"errors"
	"fmt"
)

// ErrOperand reports an instruction whose parameters do not match its
// opcode's operand signature.
var ErrOperand = errors.New("operand mismatch")

// CurrentRegister is the register operand naming the object currently being
// constructed or operated on, rather than a register file slot.
const CurrentRegister = -1

// Instruction pairs one opcode with its parameters. It is immutable after
// construction: New copies the parameter slice and accessors never expose
// the backing array.
type Instruction struct {
	op     Opcode
	params []any
}

// New creates an instruction. Parameters are not validated here; see Check.
func New(op Opcode, params ...any) Instruction {
	var p []any
	if len(params) > 0 {
		p = make([]any, len(params))
		copy(p, params)
	}
	return Instruction{op: op, params: p}
}

// Op returns the instruction's opcode.
func (in Instruction) Op() Opcode {
	return in.op
}

// NumParams returns the number of parameters.
func (in Instruction) NumParams() int {
	return len(in.params)
}

// Param returns parameter i, or nil if out of range.
func (in Instruction) Param(i int) any {
	if i < 0 || i >= len(in.params) {
		return nil
	}
	return in.params[i]
}

// Params returns a copy of the parameters.
func (in Instruction) Params() []any {
	out := make([]any, len(in.params))
	copy(out, in.params)
	return out
}

// String renders the instruction as "NAME p1, p2".
func (in Instruction) String() string {
	s := in.op.String()
	for i, p := range in.params {
		if i == 0 {
			s += " "
		} else {
			s += ", "
		}
		s += formatParam(p)
	}
	return s
}

// Check validates the parameters against the opcode's operand signature.
// Binding operands are only checked for presence; the binding layer owns
// their type. Reserved opcodes are not checked.
func (in Instruction) Check() error {
	info := GetOpcodeInfo(in.op)
	if info.Status == StatusReserved {
		return nil
	}

	for i, kind := range info.Operands {
		if kind == OperandValues {
			return in.checkValues(i)
		}
		if i >= len(in.params) {
			return fmt.Errorf("%w: %s expects %d parameters, got %d",
				ErrOperand, info.Name, len(info.Operands), len(in.params))
		}
		if err := checkOperand(kind, in.params[i]); err != nil {
			return fmt.Errorf("%w: %s parameter %d: %v", ErrOperand, info.Name, i, err)
		}
	}
	if len(in.params) > len(info.Operands) {
		return fmt.Errorf("%w: %s expects %d parameters, got %d",
			ErrOperand, info.Name, len(info.Operands), len(in.params))
	}
	return nil
}

// checkValues validates a count operand followed by exactly count values.
func (in Instruction) checkValues(at int) error {
	count, ok := in.Param(at - 1).(int)
	if !ok {
		return fmt.Errorf("%w: %s has no count before its values", ErrOperand, in.op)
	}
	if have := len(in.params) - at; have != count {
		return fmt.Errorf("%w: %s declares %d values, got %d", ErrOperand, in.op, count, have)
	}
	return nil
}

func checkOperand(kind OperandKind, p any) error {
	switch kind {
	case OperandInt:
		n, ok := p.(int)
		if !ok {
			return fmt.Errorf("want int, got %T", p)
		}
		if n < 0 {
			return fmt.Errorf("want non-negative int, got %d", n)
		}
	case OperandRegister:
		n, ok := p.(int)
		if !ok {
			return fmt.Errorf("want register, got %T", p)
		}
		if n < CurrentRegister {
			return fmt.Errorf("invalid register %d", n)
		}
	case OperandBinding:
		if p == nil {
			return fmt.Errorf("missing binding")
		}
	case OperandParamType:
		t, ok := p.(ParamType)
		if !ok {
			return fmt.Errorf("want param type, got %T", p)
		}
		if !t.Valid() {
			return fmt.Errorf("invalid param type %d", uint8(t))
		}
	case OperandList:
		if _, ok := p.([]any); !ok {
			return fmt.Errorf("want list, got %T", p)
		}
	}
	return nil
}

func formatParam(p any) string {
	switch v := p.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []any:
		s := "["
		for i, e := range v {
			if i > 0 {
				s += " "
			}
			s += formatParam(e)
		}
		return s + "]"
	case fmt.Stringer:
		return v.String()
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%v", v)
	}
}
