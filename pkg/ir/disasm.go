package ir

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the program.
func (p Program) Disassemble() string {
	var sb strings.Builder

	// Header
	if p.Name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", p.Name))
	}
	sb.WriteString(fmt.Sprintf("; DOML IR, %d instructions\n", len(p.Code)))

	reserved := 0
	for _, in := range p.Code {
		if in.Op().IsReserved() {
			reserved++
		}
	}
	if reserved > 0 {
		sb.WriteString(fmt.Sprintf("; WARNING: %d reserved instructions\n", reserved))
	}
	sb.WriteString("\n")

	for i, in := range p.Code {
		sb.WriteString(DisassembleInstruction(i, in))
		sb.WriteString("\n")
	}

	return sb.String()
}

// DisassembleInstruction formats a single instruction with its index.
func DisassembleInstruction(index int, in Instruction) string {
	info := GetOpcodeInfo(in.Op())
	params := make([]string, 0, in.NumParams())
	for i := 0; i < in.NumParams(); i++ {
		params = append(params, formatParam(in.Param(i)))
	}

	line := fmt.Sprintf("%04d  %s", index, info.Name)
	if len(params) > 0 {
		line = fmt.Sprintf("%04d  %-16s%s", index, info.Name, strings.Join(params, ", "))
	}

	switch info.Status {
	case StatusReserved:
		line += "  ; reserved"
	case StatusNoOp:
		if in.Op() != OpNop {
			line += "  ; no-op"
		}
	}
	return line
}
