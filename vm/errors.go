package vm

import (
	"errors"
	"fmt"

	"github.com/chazu/doml/pkg/ir"
)

// Fatal error kinds. Either one stops Execute and is returned wrapped in an
// *ExecError.
var (
	// ErrUnsupportedInstruction reports an opcode with no defined behavior.
	ErrUnsupportedInstruction = errors.New("unsupported instruction")

	// ErrMalformedInstruction reports an instruction whose parameters violate
	// its preconditions, meaning the producer emitted an invalid program.
	ErrMalformedInstruction = errors.New("malformed instruction")
)

// Non-fatal runtime failures. These are reported to the diagnostic sink and
// execution continues with the next instruction.
var (
	ErrStackUnderflow     = errors.New("stack underflow")
	ErrStackOverflow      = errors.New("stack overflow")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrRegisterOutOfRange = errors.New("register out of range")
	ErrNotReference       = errors.New("registers hold object references only")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrElementType        = errors.New("element type mismatch")
	ErrNegativeCapacity   = errors.New("negative capacity")
)

// ExecError is a fatal execution error tied to the instruction that raised it.
type ExecError struct {
	Index int       // Position of the instruction in the program
	Op    ir.Opcode // Opcode of the instruction
	Err   error     // ErrUnsupportedInstruction or ErrMalformedInstruction, possibly wrapped
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("instruction %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err is one of the fatal error kinds.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnsupportedInstruction) || errors.Is(err, ErrMalformedInstruction)
}
