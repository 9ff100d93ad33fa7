package vm

import "fmt"

// Binding is an invocable capability representing a constructor, getter or
// setter on a host object type. The interpreter treats it as opaque: it
// calls Bind with the runtime and the register the instruction names, and
// assumes nothing about its effects beyond reading and writing the runtime.
type Binding interface {
	Bind(rt *Runtime, reg Register)
}

// BindFunc is the adapter signature generated glue implements.
type BindFunc func(rt *Runtime, reg Register)

// BindingKind distinguishes the three binding shapes.
type BindingKind uint8

const (
	// Constructor bindings pop their arguments, build an object, store it in
	// the target register and push it.
	Constructor BindingKind = iota
	// Getter bindings read from the object in the target register and push
	// the result.
	Getter
	// Setter bindings pop their arguments and write them to the object in
	// the target register.
	Setter
)

// String returns a human-readable name for the binding kind.
func (k BindingKind) String() string {
	switch k {
	case Constructor:
		return "constructor"
	case Getter:
		return "getter"
	case Setter:
		return "setter"
	default:
		return fmt.Sprintf("BindingKind(%d)", uint8(k))
	}
}

// FuncBinding is a Binding backed by a function plus the metadata it was
// registered under.
type FuncBinding struct {
	Name  string // Member name; empty for constructors
	Owner string // Qualified host type name, e.g. "image.Point"
	Arity int
	Kind  BindingKind
	Fn    BindFunc
}

// Bind invokes the underlying function.
func (b *FuncBinding) Bind(rt *Runtime, reg Register) {
	b.Fn(rt, reg)
}

// String renders the binding as "ctor image.Point", "get X/0 @ image.Point".
func (b *FuncBinding) String() string {
	switch b.Kind {
	case Constructor:
		return "ctor " + b.Owner
	case Getter:
		return fmt.Sprintf("get %s/%d @ %s", b.Name, b.Arity, b.Owner)
	default:
		return fmt.Sprintf("set %s/%d @ %s", b.Name, b.Arity, b.Owner)
	}
}

// ownerOf returns the owning type of a binding, if it exposes one.
func ownerOf(b Binding) string {
	if fb, ok := b.(*FuncBinding); ok {
		return fb.Owner
	}
	return ""
}
