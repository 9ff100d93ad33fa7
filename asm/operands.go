package asm

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/chazu/doml/pkg/ir"
	"github.com/chazu/doml/vm"
)

// assembleLine converts one line's mnemonic and arguments into an
// instruction, shaping each argument by the opcode's operand signature.
func assembleLine(line Line, reg *vm.Registry) (ir.Instruction, error) {
	op, ok := ir.LookupOpcode(strings.ToUpper(strings.TrimSpace(line.Op)))
	if !ok {
		return ir.Instruction{}, fmt.Errorf("unknown opcode %q", line.Op)
	}
	info := ir.GetOpcodeInfo(op)

	// Reserved opcodes carry no signature; keep their arguments as values.
	if info.Status == ir.StatusReserved {
		params := make([]any, len(line.Args))
		for i, a := range line.Args {
			v, err := value(a)
			if err != nil {
				return ir.Instruction{}, fmt.Errorf("argument %d: %w", i, err)
			}
			params[i] = v
		}
		return ir.New(op, params...), nil
	}

	var params []any
	args := line.Args
	for i, kind := range info.Operands {
		switch kind {
		case ir.OperandValues:
			// The preceding count operand is implied by the values given.
			values, err := values(args[i-1:])
			if err != nil {
				return ir.Instruction{}, err
			}
			params = append(params, len(values))
			params = append(params, values...)
			return ir.New(op, params...), nil

		case ir.OperandList:
			if i >= len(args) {
				params = append(params, []any{})
				continue
			}
			list, ok := args[i].([]any)
			if !ok {
				return ir.Instruction{}, fmt.Errorf("argument %d: want a list, got %s", i, describe(args[i]))
			}
			values, err := values(list)
			if err != nil {
				return ir.Instruction{}, fmt.Errorf("argument %d: %w", i, err)
			}
			params = append(params, values)
			continue
		}

		// PUSH's count is implied, so it never appears in the source.
		if kind == ir.OperandInt && i+1 < len(info.Operands) && info.Operands[i+1] == ir.OperandValues {
			continue
		}

		if i >= len(args) {
			return ir.Instruction{}, fmt.Errorf("%s expects %d arguments, got %d", info.Name, len(info.Operands), len(args))
		}
		p, err := operand(kind, args[i], reg)
		if err != nil {
			return ir.Instruction{}, fmt.Errorf("argument %d: %w", i, err)
		}
		params = append(params, p)
	}

	if len(args) > len(info.Operands) {
		return ir.Instruction{}, fmt.Errorf("%s expects %d arguments, got %d", info.Name, len(info.Operands), len(args))
	}
	return ir.New(op, params...), nil
}

func operand(kind ir.OperandKind, arg any, reg *vm.Registry) (any, error) {
	switch kind {
	case ir.OperandInt:
		n, err := integer(arg)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("want a non-negative integer, got %d", n)
		}
		return n, nil

	case ir.OperandRegister:
		if s, ok := arg.(string); ok && strings.EqualFold(s, "current") {
			return ir.CurrentRegister, nil
		}
		n, err := integer(arg)
		if err != nil {
			return nil, err
		}
		if n < ir.CurrentRegister {
			return nil, fmt.Errorf("invalid register %d", n)
		}
		return n, nil

	case ir.OperandBinding:
		return binding(arg, reg)

	case ir.OperandParamType:
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("want a type name, got %s", describe(arg))
		}
		return ir.ParseParamType(s)
	}
	return nil, fmt.Errorf("unsupported operand kind %s", kind)
}

func integer(arg any) (int, error) {
	n, ok := arg.(int64)
	if !ok {
		return 0, fmt.Errorf("want an integer, got %s", describe(arg))
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, fmt.Errorf("integer %d out of range", n)
	}
	return int(n), nil
}

// binding resolves a binding table against the registry.
func binding(arg any, reg *vm.Registry) (vm.Binding, error) {
	t, ok := arg.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("want a binding table, got %s", describe(arg))
	}
	if reg == nil {
		return nil, fmt.Errorf("no binding registry")
	}

	owner, _ := t["owner"].(string)
	arity := -1
	if a, ok := t["arity"]; ok {
		n, err := integer(a)
		if err != nil {
			return nil, fmt.Errorf("arity: %w", err)
		}
		arity = n
	}

	if name, ok := t["constructor"].(string); ok {
		if b, ok := reg.Constructor(name); ok {
			return b, nil
		}
		return nil, fmt.Errorf("no constructor registered for %s", name)
	}
	if name, ok := t["getter"].(string); ok {
		if arity < 0 {
			arity = 0
		}
		if b, ok := reg.Getter(name, owner, arity); ok {
			return b, nil
		}
		return nil, fmt.Errorf("no getter %s/%d registered on %q", name, arity, owner)
	}
	if name, ok := t["setter"].(string); ok {
		if arity < 0 {
			arity = 1
		}
		if b, ok := reg.Setter(name, owner, arity); ok {
			return b, nil
		}
		return nil, fmt.Errorf("no setter %s/%d registered on %q", name, arity, owner)
	}
	return nil, fmt.Errorf("binding table needs one of constructor, getter or setter")
}

func values(args []any) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		v, err := value(a)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// value converts a decoded TOML value into an instruction parameter.
func value(arg any) (any, error) {
	switch v := arg.(type) {
	case int64:
		return integer(v)
	case float64, string, bool:
		return v, nil
	case map[string]any:
		s, ok := v["decimal"].(string)
		if !ok || len(v) != 1 {
			return nil, fmt.Errorf("unsupported table value %v", v)
		}
		d, _, err := apd.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("decimal %q: %w", s, err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported value %s", describe(arg))
	}
}

func describe(arg any) string {
	switch arg.(type) {
	case nil:
		return "nothing"
	case int64:
		return "an integer"
	case float64:
		return "a float"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case []any:
		return "a list"
	case map[string]any:
		return "a table"
	default:
		return fmt.Sprintf("%T", arg)
	}
}
