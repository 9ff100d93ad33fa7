package ir

import "fmt"

// Opcode represents an IR instruction tag.
// Opcodes are organized into ranges by family for easy identification.
type Opcode byte

const (
	// ========================================================================
	// System (0x00-0x0F)
	// ========================================================================

	OpNop        Opcode = 0x00 // No operation
	OpInit       Opcode = 0x01 // Reserve registers then stack: INIT <stackSize> <registerSize>
	OpDeInit     Opcode = 0x02 // Clear registers then stack
	OpCreateType Opcode = 0x03 // Reserved: CREATE_TYPE <id> <depth> ...

	// ========================================================================
	// Stack (0x10-0x1F)
	// ========================================================================

	OpNewObj    Opcode = 0x10 // Invoke constructor: NEW_OBJ <constructor> <register>
	OpPush      Opcode = 0x11 // Push values: PUSH <count> <v1> ... <vn>
	OpCallN     Opcode = 0x12 // Invoke setter on register: CALL_N <callee> <register>
	OpCallStack Opcode = 0x13 // Invoke setter on popped object: CALL_STACK <callee>
	OpPop       Opcode = 0x14 // Discard values: POP <count>
	OpGetN      Opcode = 0x15 // Invoke getter on register: GET_N <register> <getter>
	OpGetStack  Opcode = 0x16 // Invoke getter on popped object: GET_STACK <getter>

	// ========================================================================
	// QuickStack (0x20-0x2F) - reserved fast path
	// ========================================================================

	OpQuickPush Opcode = 0x20
	OpQuickCall Opcode = 0x21
	OpPCall     Opcode = 0x22
	OpPNewObj   Opcode = 0x23
	OpQuickGet  Opcode = 0x24
	OpDumbGet   Opcode = 0x25

	// ========================================================================
	// Array (0x30-0x3F)
	// ========================================================================

	OpPushArray Opcode = 0x30 // Push fresh array: PUSH_ARRAY <elementType> <length>
	OpSetArray  Opcode = 0x31 // Pop value into top array: SET_ARRAY <index>
	OpGetArray  Opcode = 0x32 // Push element of top array: GET_ARRAY <index>
	OpArrayCpy  Opcode = 0x33 // Pop array, copy values in: ARRAY_CPY <values>
	OpCompact   Opcode = 0x34 // Reserved no-op

	// ========================================================================
	// Map/Collection (0x40-0x4F) - reserved
	// ========================================================================

	OpPushMap        Opcode = 0x40
	OpPushCollection Opcode = 0x41
	OpSetMap         Opcode = 0x42
	OpSetCollection  Opcode = 0x43
	OpQuickSetMap    Opcode = 0x44
	OpZipMap         Opcode = 0x45
	OpGetMap         Opcode = 0x46
	OpGetCollection  Opcode = 0x47
)

// Family groups related opcodes.
type Family uint8

const (
	FamilyUnknown Family = iota
	FamilySystem
	FamilyStack
	FamilyQuickStack
	FamilyArray
	FamilyMap
)

// String returns a human-readable name for the family.
func (f Family) String() string {
	switch f {
	case FamilySystem:
		return "System"
	case FamilyStack:
		return "Stack"
	case FamilyQuickStack:
		return "QuickStack"
	case FamilyArray:
		return "Array"
	case FamilyMap:
		return "Map/Collection"
	default:
		return fmt.Sprintf("Family(%d)", uint8(f))
	}
}

// Status describes whether an opcode has defined behavior.
type Status uint8

const (
	// StatusImplemented opcodes have full semantics.
	StatusImplemented Status = iota
	// StatusNoOp opcodes are accepted and do nothing.
	StatusNoOp
	// StatusReserved opcodes have no defined behavior; dispatching one is fatal.
	StatusReserved
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusImplemented:
		return "implemented"
	case StatusNoOp:
		return "no-op"
	case StatusReserved:
		return "reserved"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// OperandKind is the expected shape of one instruction parameter.
type OperandKind uint8

const (
	// OperandInt is a non-negative Go int.
	OperandInt OperandKind = iota
	// OperandRegister is a Go int; -1 names the current object.
	OperandRegister
	// OperandBinding is an opaque function binding.
	OperandBinding
	// OperandParamType is a ParamType.
	OperandParamType
	// OperandValues consumes every remaining parameter as a pushed value.
	OperandValues
	// OperandList is a single []any parameter.
	OperandList
)

// String returns a human-readable name for the operand kind.
func (k OperandKind) String() string {
	switch k {
	case OperandInt:
		return "int"
	case OperandRegister:
		return "register"
	case OperandBinding:
		return "binding"
	case OperandParamType:
		return "type"
	case OperandValues:
		return "values..."
	case OperandList:
		return "list"
	default:
		return fmt.Sprintf("OperandKind(%d)", uint8(k))
	}
}

// OpcodeInfo provides metadata about each opcode for disassembly and validation.
type OpcodeInfo struct {
	Name     string        // Human-readable name
	Family   Family        // Opcode family
	Status   Status        // Whether the opcode has behavior
	Operands []OperandKind // Operand signature, in parameter order
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// System
	OpNop:        {"NOP", FamilySystem, StatusNoOp, nil},
	OpInit:       {"INIT", FamilySystem, StatusImplemented, []OperandKind{OperandInt, OperandInt}},
	OpDeInit:     {"DE_INIT", FamilySystem, StatusImplemented, nil},
	OpCreateType: {"CREATE_TYPE", FamilySystem, StatusReserved, nil},

	// Stack
	OpNewObj:    {"NEW_OBJ", FamilyStack, StatusImplemented, []OperandKind{OperandBinding, OperandRegister}},
	OpPush:      {"PUSH", FamilyStack, StatusImplemented, []OperandKind{OperandInt, OperandValues}},
	OpCallN:     {"CALL_N", FamilyStack, StatusImplemented, []OperandKind{OperandBinding, OperandRegister}},
	OpCallStack: {"CALL_STACK", FamilyStack, StatusImplemented, []OperandKind{OperandBinding}},
	OpPop:       {"POP", FamilyStack, StatusImplemented, []OperandKind{OperandInt}},
	OpGetN:      {"GET_N", FamilyStack, StatusImplemented, []OperandKind{OperandRegister, OperandBinding}},
	OpGetStack:  {"GET_STACK", FamilyStack, StatusImplemented, []OperandKind{OperandBinding}},

	// QuickStack
	OpQuickPush: {"QUICK_PUSH", FamilyQuickStack, StatusReserved, nil},
	OpQuickCall: {"QUICK_CALL", FamilyQuickStack, StatusReserved, nil},
	OpPCall:     {"P_CALL", FamilyQuickStack, StatusReserved, nil},
	OpPNewObj:   {"P_NEW_OBJ", FamilyQuickStack, StatusReserved, nil},
	OpQuickGet:  {"QUICK_GET", FamilyQuickStack, StatusReserved, nil},
	OpDumbGet:   {"DUMB_GET", FamilyQuickStack, StatusReserved, nil},

	// Array
	OpPushArray: {"PUSH_ARRAY", FamilyArray, StatusImplemented, []OperandKind{OperandParamType, OperandInt}},
	OpSetArray:  {"SET_ARRAY", FamilyArray, StatusImplemented, []OperandKind{OperandInt}},
	OpGetArray:  {"GET_ARRAY", FamilyArray, StatusImplemented, []OperandKind{OperandInt}},
	OpArrayCpy:  {"ARRAY_CPY", FamilyArray, StatusImplemented, []OperandKind{OperandList}},
	OpCompact:   {"COMPACT", FamilyArray, StatusNoOp, nil},

	// Map/Collection
	OpPushMap:        {"PUSH_MAP", FamilyMap, StatusReserved, nil},
	OpPushCollection: {"PUSH_COLLECTION", FamilyMap, StatusReserved, nil},
	OpSetMap:         {"SET_MAP", FamilyMap, StatusReserved, nil},
	OpSetCollection:  {"SET_COLLECTION", FamilyMap, StatusReserved, nil},
	OpQuickSetMap:    {"QUICK_SET_MAP", FamilyMap, StatusReserved, nil},
	OpZipMap:         {"ZIP_MAP", FamilyMap, StatusReserved, nil},
	OpGetMap:         {"GET_MAP", FamilyMap, StatusReserved, nil},
	OpGetCollection:  {"GET_COLLECTION", FamilyMap, StatusReserved, nil},
}

// opcodesByName is the reverse of opcodeInfoTable, built once at init.
var opcodesByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeInfoTable))
	for op, info := range opcodeInfoTable {
		m[info.Name] = op
	}
	return m
}()

// GetOpcodeInfo returns metadata for an opcode.
// Returns an OpcodeInfo with name "UNKNOWN" and reserved status if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op)), Status: StatusReserved}
}

// LookupOpcode finds an opcode by its catalog name (e.g. "PUSH_ARRAY").
func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodesByName[name]
	return op, ok
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Family returns the family an opcode belongs to.
func (op Opcode) Family() Family {
	return GetOpcodeInfo(op).Family
}

// IsKnown returns true if the opcode is in the catalog.
func (op Opcode) IsKnown() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// IsReserved returns true if dispatching this opcode has no defined behavior.
func (op Opcode) IsReserved() bool {
	return GetOpcodeInfo(op).Status == StatusReserved
}

// IsQuickStack returns true if this opcode belongs to the reserved fast path.
func (op Opcode) IsQuickStack() bool {
	return op >= OpQuickPush && op <= OpDumbGet
}

// IsArrayOp returns true if this opcode operates on arrays.
func (op Opcode) IsArrayOp() bool {
	return op >= OpPushArray && op <= OpCompact
}

// IsMapOp returns true if this opcode belongs to the Map/Collection family.
func (op Opcode) IsMapOp() bool {
	return op >= OpPushMap && op <= OpGetCollection
}

// TakesBinding returns true if the opcode invokes a function binding.
func (op Opcode) TakesBinding() bool {
	for _, k := range GetOpcodeInfo(op).Operands {
		if k == OperandBinding {
			return true
		}
	}
	return false
}

// AllOpcodes returns a slice of all defined opcodes.
// Useful for testing that all opcodes have metadata.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
