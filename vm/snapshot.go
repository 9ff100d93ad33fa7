package vm

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical mode so identical runtimes encode to identical
// bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ValueSnapshot is the serializable form of a Value. Host objects cannot be
// reconstructed, so they are recorded by Go type and printed form.
type ValueSnapshot struct {
	Kind    string          `cbor:"kind"`
	Typed   bool            `cbor:"typed,omitempty"`
	Int     int64           `cbor:"int,omitempty"`
	Float   float64         `cbor:"float,omitempty"`
	Decimal string          `cbor:"dec,omitempty"`
	Text    string          `cbor:"text,omitempty"`
	Bool    bool            `cbor:"bool,omitempty"`
	Type    string          `cbor:"type,omitempty"`
	Repr    string          `cbor:"repr,omitempty"`
	Elem    string          `cbor:"elem,omitempty"`
	Items   []ValueSnapshot `cbor:"items,omitempty"`
}

// Snapshot captures a runtime's capacities and contents for inspection.
type Snapshot struct {
	StackCapacity int             `cbor:"stack_cap"`
	Stack         []ValueSnapshot `cbor:"stack"` // Bottom first
	Registers     []ValueSnapshot `cbor:"registers"`
	Current       ValueSnapshot   `cbor:"current"`
}

// Snapshot returns the runtime's current state.
func (rt *Runtime) Snapshot() *Snapshot {
	s := &Snapshot{
		StackCapacity: rt.stackCap,
		Stack:         make([]ValueSnapshot, rt.sp),
		Registers:     make([]ValueSnapshot, len(rt.registers)),
		Current:       snapshotValue(rt.current),
	}
	for n := 0; n < rt.sp; n++ {
		s.Stack[n] = snapshotValue(rt.stack[n].v)
		s.Stack[n].Typed = rt.stack[n].typed
	}
	for n, v := range rt.registers {
		s.Registers[n] = snapshotValue(v)
	}
	return s
}

func snapshotValue(v Value) ValueSnapshot {
	vs := ValueSnapshot{Kind: v.Kind().String()}
	switch v.Kind() {
	case KindInt:
		vs.Int, _ = v.AsInt()
	case KindFloat:
		vs.Float, _ = v.AsFloat()
	case KindDecimal:
		d, _ := v.AsDecimal()
		vs.Decimal = d.String()
	case KindText:
		vs.Text, _ = v.AsText()
	case KindBool:
		vs.Bool, _ = v.AsBool()
	case KindObject:
		obj, _ := v.AsObject()
		vs.Type = fmt.Sprintf("%T", obj)
		vs.Repr = fmt.Sprintf("%+v", obj)
	case KindArray:
		arr, _ := v.AsArray()
		vs.Elem = arr.Elem().String()
		vs.Items = make([]ValueSnapshot, arr.Len())
		for n := range vs.Items {
			item, _ := arr.Get(n)
			vs.Items[n] = snapshotValue(item)
		}
	}
	return vs
}

// MarshalSnapshot serializes a Snapshot to CBOR bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("vm: unmarshal snapshot: %w", err)
	}
	return &s, nil
}
