package ir

// Program is a named instruction sequence, the unit the interpreter runs.
type Program struct {
	Name string
	Code []Instruction
}

// Len returns the number of instructions.
func (p Program) Len() int {
	return len(p.Code)
}

// Check validates every instruction and returns the index and error of the
// first malformed one, or -1 and nil.
func (p Program) Check() (int, error) {
	for i, in := range p.Code {
		if err := in.Check(); err != nil {
			return i, err
		}
	}
	return -1, nil
}

// Builder emits instructions into a program. Methods return the builder so
// calls can be chained.
type Builder struct {
	prog Program
}

// NewBuilder creates a builder for a program with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{prog: Program{Name: name, Code: make([]Instruction, 0, 16)}}
}

// Emit appends an arbitrary instruction.
func (b *Builder) Emit(op Opcode, params ...any) *Builder {
	b.prog.Code = append(b.prog.Code, New(op, params...))
	return b
}

// Nop emits NOP.
func (b *Builder) Nop() *Builder { return b.Emit(OpNop) }

// Init emits INIT with the given capacities.
func (b *Builder) Init(stackSize, registerSize int) *Builder {
	return b.Emit(OpInit, stackSize, registerSize)
}

// DeInit emits DE_INIT.
func (b *Builder) DeInit() *Builder { return b.Emit(OpDeInit) }

// NewObj emits NEW_OBJ.
func (b *Builder) NewObj(constructor any, register int) *Builder {
	return b.Emit(OpNewObj, constructor, register)
}

// Push emits PUSH with the count derived from values.
func (b *Builder) Push(values ...any) *Builder {
	params := make([]any, 0, len(values)+1)
	params = append(params, len(values))
	params = append(params, values...)
	return b.Emit(OpPush, params...)
}

// CallN emits CALL_N.
func (b *Builder) CallN(callee any, register int) *Builder {
	return b.Emit(OpCallN, callee, register)
}

// CallStack emits CALL_STACK.
func (b *Builder) CallStack(callee any) *Builder {
	return b.Emit(OpCallStack, callee)
}

// Pop emits POP.
func (b *Builder) Pop(count int) *Builder { return b.Emit(OpPop, count) }

// GetN emits GET_N.
func (b *Builder) GetN(register int, getter any) *Builder {
	return b.Emit(OpGetN, register, getter)
}

// GetStack emits GET_STACK.
func (b *Builder) GetStack(getter any) *Builder {
	return b.Emit(OpGetStack, getter)
}

// PushArray emits PUSH_ARRAY.
func (b *Builder) PushArray(elem ParamType, length int) *Builder {
	return b.Emit(OpPushArray, elem, length)
}

// SetArray emits SET_ARRAY.
func (b *Builder) SetArray(index int) *Builder { return b.Emit(OpSetArray, index) }

// GetArray emits GET_ARRAY.
func (b *Builder) GetArray(index int) *Builder { return b.Emit(OpGetArray, index) }

// ArrayCpy emits ARRAY_CPY.
func (b *Builder) ArrayCpy(values ...any) *Builder {
	list := make([]any, len(values))
	copy(list, values)
	return b.Emit(OpArrayCpy, list)
}

// Compact emits COMPACT.
func (b *Builder) Compact() *Builder { return b.Emit(OpCompact) }

// Program returns the built program. The builder may keep emitting; the
// returned program does not observe later instructions.
func (b *Builder) Program() Program {
	code := make([]Instruction, len(b.prog.Code))
	copy(code, b.prog.Code)
	return Program{Name: b.prog.Name, Code: code}
}
