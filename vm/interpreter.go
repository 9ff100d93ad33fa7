package vm

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/doml/pkg/ir"
)

// Mode selects how much checking Execute performs.
type Mode uint8

const (
	// Safe validates every instruction's operands before dispatching it.
	Safe Mode = iota
	// Unsafe trusts the producer and dispatches instructions as given.
	Unsafe
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case Safe:
		return "safe"
	case Unsafe:
		return "unsafe"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode parses "safe" or "unsafe".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "safe", "":
		return Safe, nil
	case "unsafe":
		return Unsafe, nil
	default:
		return Safe, fmt.Errorf("unknown execution mode %q", s)
	}
}

// Stats summarizes the most recent Execute call.
type Stats struct {
	Executed int   // Instructions dispatched
	Failed   int   // Instructions that reported a non-fatal failure
	Fatal    error // The error that stopped execution, if any
}

// ---------------------------------------------------------------------------
// Interpreter: IR execution engine
// ---------------------------------------------------------------------------

// Interpreter executes one program against one runtime.
//
// Instructions run in order. A non-fatal failure is reported to the sink as
// an Error diagnostic and execution continues with the next instruction,
// leaving the runtime in whatever state the failed instruction produced.
// Reserved opcodes and malformed instructions stop execution with an
// *ExecError.
type Interpreter struct {
	program ir.Program
	rt      *Runtime
	sink    Sink
	trace   bool
	log     commonlog.Logger
	stats   Stats
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithSink sets the diagnostic sink. The default logs through commonlog.
func WithSink(s Sink) Option {
	return func(i *Interpreter) { i.sink = s }
}

// WithRuntime runs the program against an existing runtime, for example one
// shared across several programs executed in sequence.
func WithRuntime(rt *Runtime) Option {
	return func(i *Interpreter) { i.rt = rt }
}

// WithTrace logs every dispatched instruction at debug level.
func WithTrace(on bool) Option {
	return func(i *Interpreter) { i.trace = on }
}

// NewInterpreter creates an interpreter for program.
func NewInterpreter(program ir.Program, opts ...Option) *Interpreter {
	interp := &Interpreter{
		program: program,
		log:     commonlog.GetLogger("doml.vm"),
	}
	for _, opt := range opts {
		opt(interp)
	}
	if interp.rt == nil {
		interp.rt = NewRuntime()
	}
	if interp.sink == nil {
		interp.sink = NewLogSink()
	}
	interp.rt.SetSink(interp.sink)
	return interp
}

// Runtime returns the interpreter's runtime.
func (i *Interpreter) Runtime() *Runtime { return i.rt }

// Program returns the program being executed.
func (i *Interpreter) Program() ir.Program { return i.program }

// Stats returns statistics for the most recent Execute call.
func (i *Interpreter) Stats() Stats { return i.stats }

// Execute resets the value stack and runs every instruction in order.
// Registers and capacities persist from earlier calls. It returns nil unless
// a fatal error stopped execution; non-fatal failures go to the sink.
func (i *Interpreter) Execute(mode Mode) error {
	i.stats = Stats{}
	i.rt.ResetStack()

	for idx, in := range i.program.Code {
		if i.trace {
			i.log.Debugf("[%04d] %-14s sp=%d", idx, in.Op(), i.rt.Depth())
		}

		err := i.step(in, mode)
		i.stats.Executed++
		if err == nil {
			continue
		}

		if IsFatal(err) {
			fatal := &ExecError{Index: idx, Op: in.Op(), Err: err}
			i.stats.Fatal = fatal
			return fatal
		}

		i.stats.Failed++
		i.sink.Report(Diagnostic{
			Severity:        SeverityError,
			Message:         err.Error(),
			IncludeLocation: true,
			Op:              in.Op(),
			Index:           idx,
			Owner:           instructionOwner(in),
		})
	}
	return nil
}

// step dispatches one instruction. A panic during dispatch, typically an
// unsafe-mode operand of the wrong shape, is returned as a malformed
// instruction.
func (i *Interpreter) step(in ir.Instruction, mode Mode) (err error) {
	info := ir.GetOpcodeInfo(in.Op())
	if info.Status == ir.StatusReserved {
		return fmt.Errorf("%w: %s is not implemented", ErrUnsupportedInstruction, info.Name)
	}

	if mode == Safe {
		if err := validate(in, info); err != nil {
			return err
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMalformedInstruction, r)
		}
	}()
	return i.dispatch(in, mode)
}

// validate checks an instruction's operands against its opcode signature.
func validate(in ir.Instruction, info ir.OpcodeInfo) error {
	if err := in.Check(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedInstruction, err)
	}
	for at, kind := range info.Operands {
		if kind != ir.OperandBinding {
			continue
		}
		if _, ok := in.Param(at).(Binding); !ok {
			return fmt.Errorf("%w: %s parameter %d is %T, not a binding",
				ErrMalformedInstruction, info.Name, at, in.Param(at))
		}
	}
	return nil
}

// instructionOwner names the host type behind the instruction's binding.
func instructionOwner(in ir.Instruction) string {
	for _, p := range in.Params() {
		if b, ok := p.(Binding); ok {
			return ownerOf(b)
		}
	}
	return ""
}

// IsExecError reports whether err carries an *ExecError and returns it.
func IsExecError(err error) (*ExecError, bool) {
	var ee *ExecError
	ok := errors.As(err, &ee)
	return ee, ok
}
