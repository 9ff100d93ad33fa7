package vm

import (
	"fmt"

	"github.com/chazu/doml/pkg/ir"
)

// Register addresses either a slot in the register file or the object a
// binding call is currently bound to.
type Register struct {
	index   int
	current bool
}

// Current is the register naming the object currently being constructed or
// operated on. It aliases that object rather than naming a file slot.
var Current = Register{index: ir.CurrentRegister, current: true}

// Indexed addresses register file slot n.
func Indexed(n int) Register {
	return Register{index: n}
}

// RegisterFromIndex decodes an instruction's register operand: -1 is
// Current, anything else is a file slot.
func RegisterFromIndex(n int) Register {
	if n == ir.CurrentRegister {
		return Current
	}
	return Indexed(n)
}

// IsCurrent reports whether r is the current-object register.
func (r Register) IsCurrent() bool { return r.current }

// Index returns the file slot, or -1 for Current.
func (r Register) Index() int { return r.index }

// String renders the register as "r3" or "current".
func (r Register) String() string {
	if r.current {
		return "current"
	}
	return fmt.Sprintf("r%d", r.index)
}
