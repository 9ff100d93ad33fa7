// Package ir defines the linear intermediate representation that DOML
// programs are compiled into ahead of time.
//
// A program is a flat sequence of instructions. Each instruction pairs an
// Opcode with an ordered list of dynamically typed parameters. The package
// is pure data: it knows the shape of every instruction but never executes
// one. Execution lives in the vm package.
//
// # Opcode families
//
// Opcodes are organized into byte ranges by family:
//
//   - System (0x00-0x0F): NOP, INIT, DE_INIT, CREATE_TYPE
//   - Stack (0x10-0x1F): object construction, pushes, pops and binding calls
//   - QuickStack (0x20-0x2F): reserved fast-path instructions
//   - Array (0x30-0x3F): homogeneous array creation and access
//   - Map/Collection (0x40-0x4F): reserved collection instructions
//
// Reserved opcodes exist in the catalog so that a producer and the
// interpreter agree on their tags, but their status marks them as having no
// defined behavior.
//
// # Operands
//
// Each opcode documents an operand signature (see OperandKind). Integer
// operands are Go ints. Register operands are ints where -1 names the object
// currently being operated on. Binding operands are opaque values supplied by
// the binding layer; this package never inspects them beyond printing.
package ir
