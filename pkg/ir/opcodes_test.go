package ir

import (
	"strings"
	"testing"
)

func TestAllOpcodesHaveMetadata(t *testing.T) {
	// Ensure every defined opcode has metadata
	for _, op := range AllOpcodes() {
		info := GetOpcodeInfo(op)
		if info.Name == "" || strings.HasPrefix(info.Name, "UNKNOWN") {
			t.Errorf("Opcode 0x%02X has no metadata", byte(op))
		}
		if info.Family == FamilyUnknown {
			t.Errorf("%s has no family", op)
		}
	}
}

func TestOpcodeCount(t *testing.T) {
	if got := OpcodeCount(); got != 30 {
		t.Errorf("OpcodeCount() = %d, want 30", got)
	}
}

func TestOpcodeString(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{OpNop, "NOP"},
		{OpInit, "INIT"},
		{OpDeInit, "DE_INIT"},
		{OpNewObj, "NEW_OBJ"},
		{OpPush, "PUSH"},
		{OpCallStack, "CALL_STACK"},
		{OpQuickPush, "QUICK_PUSH"},
		{OpPushArray, "PUSH_ARRAY"},
		{OpZipMap, "ZIP_MAP"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Opcode(0x%02X).String() = %q, want %q", byte(tt.op), got, tt.want)
		}
	}
}

func TestUnknownOpcode(t *testing.T) {
	op := Opcode(0xEE)
	if got := op.String(); !strings.HasPrefix(got, "UNKNOWN") {
		t.Errorf("Unknown opcode should return UNKNOWN, got %q", got)
	}
	if op.IsKnown() {
		t.Error("0xEE should not be known")
	}
	if !op.IsReserved() {
		t.Error("unknown opcodes should be treated as reserved")
	}
}

func TestLookupOpcode(t *testing.T) {
	for _, op := range AllOpcodes() {
		got, ok := LookupOpcode(op.String())
		if !ok || got != op {
			t.Errorf("LookupOpcode(%q) = %v, %v; want %v", op.String(), got, ok, op)
		}
	}
	if _, ok := LookupOpcode("JUMP"); ok {
		t.Error("LookupOpcode(JUMP) should fail")
	}
}

func TestOpcodeFamilies(t *testing.T) {
	tests := []struct {
		op   Opcode
		want Family
	}{
		{OpInit, FamilySystem},
		{OpCreateType, FamilySystem},
		{OpGetStack, FamilyStack},
		{OpDumbGet, FamilyQuickStack},
		{OpCompact, FamilyArray},
		{OpGetCollection, FamilyMap},
	}
	for _, tt := range tests {
		if got := tt.op.Family(); got != tt.want {
			t.Errorf("%s.Family() = %s, want %s", tt.op, got, tt.want)
		}
	}
}

func TestReservedOpcodes(t *testing.T) {
	reserved := []Opcode{OpCreateType, OpQuickPush, OpQuickCall, OpPCall, OpPNewObj,
		OpQuickGet, OpDumbGet, OpPushMap, OpPushCollection, OpSetMap, OpSetCollection,
		OpQuickSetMap, OpZipMap, OpGetMap, OpGetCollection}
	for _, op := range reserved {
		if !op.IsReserved() {
			t.Errorf("%s.IsReserved() = false, want true", op)
		}
	}

	live := []Opcode{OpNop, OpInit, OpPush, OpPushArray, OpCompact}
	for _, op := range live {
		if op.IsReserved() {
			t.Errorf("%s.IsReserved() = true, want false", op)
		}
	}
}

func TestOpcodeRanges(t *testing.T) {
	for _, op := range AllOpcodes() {
		if op.IsQuickStack() != (op.Family() == FamilyQuickStack) {
			t.Errorf("%s: IsQuickStack disagrees with family", op)
		}
		if op.IsArrayOp() != (op.Family() == FamilyArray) {
			t.Errorf("%s: IsArrayOp disagrees with family", op)
		}
		if op.IsMapOp() != (op.Family() == FamilyMap) {
			t.Errorf("%s: IsMapOp disagrees with family", op)
		}
	}
}

func TestTakesBinding(t *testing.T) {
	with := []Opcode{OpNewObj, OpCallN, OpCallStack, OpGetN, OpGetStack}
	for _, op := range with {
		if !op.TakesBinding() {
			t.Errorf("%s.TakesBinding() = false, want true", op)
		}
	}
	without := []Opcode{OpPush, OpPop, OpInit, OpPushArray}
	for _, op := range without {
		if op.TakesBinding() {
			t.Errorf("%s.TakesBinding() = true, want false", op)
		}
	}
}

func TestParamType(t *testing.T) {
	tests := []struct {
		in   string
		want ParamType
	}{
		{"INT", TypeInt},
		{"flt", TypeFloat},
		{"DEC", TypeDecimal},
		{" str ", TypeString},
		{"BOOL", TypeBool},
		{"OBJ", TypeObject},
		{"MAP", TypeMap},
		{"VEC", TypeVector},
	}
	for _, tt := range tests {
		got, err := ParseParamType(tt.in)
		if err != nil {
			t.Errorf("ParseParamType(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseParamType(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseParamType("LIST"); err == nil {
		t.Error("ParseParamType(LIST) should fail")
	}
	if !TypeMap.IsCollection() || !TypeVector.IsCollection() || TypeInt.IsCollection() {
		t.Error("IsCollection wrong")
	}
	if ParamType(42).Valid() {
		t.Error("ParamType(42) should be invalid")
	}
}
