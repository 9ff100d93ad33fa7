// Package asm assembles DOML IR programs from TOML program files.
//
// A program file names the program and lists its instructions:
//
//	name = "point"
//
//	[[code]]
//	op = "INIT"
//	args = [16, 4]
//
//	[[code]]
//	op = "NEW_OBJ"
//	args = [{ constructor = "image.Point" }, 0]
//
// Binding operands are inline tables resolved through a vm.Registry:
// {constructor = owner}, {getter = name, owner = owner, arity = n} and
// {setter = name, owner = owner, arity = n}. Decimal values are written
// {decimal = "1.50"}. PUSH takes its values directly; the count is implied.
package asm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/doml/pkg/ir"
	"github.com/chazu/doml/vm"
)

// Extension is the conventional suffix of program files.
const Extension = ".doml.toml"

// File is the decoded form of a program file.
type File struct {
	Name string `toml:"name"`
	Code []Line `toml:"code"`
}

// Line is one [[code]] entry.
type Line struct {
	Op   string `toml:"op"`
	Args []any  `toml:"args"`
}

// Error describes a problem with one instruction, or with the file as a
// whole when Index is -1.
type Error struct {
	Index int    // Instruction position, -1 for file-level errors
	Op    string // Mnemonic as written
	Line  int    // 1-based source line, 0 if unknown
	Msg   string
}

func (e *Error) Error() string {
	if e.Index < 0 {
		if e.Line > 0 {
			return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
		}
		return e.Msg
	}
	return fmt.Sprintf("instruction %d (%s): %s", e.Index, e.Op, e.Msg)
}

// ErrorList collects every error found while assembling a file.
type ErrorList []*Error

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Errors extracts the per-instruction errors from an Assemble error.
func Errors(err error) ErrorList {
	var list ErrorList
	if errors.As(err, &list) {
		return list
	}
	var one *Error
	if errors.As(err, &one) {
		return ErrorList{one}
	}
	if err != nil {
		return ErrorList{{Index: -1, Msg: err.Error()}}
	}
	return nil
}

// Parse decodes a program file.
func Parse(data []byte) (*File, error) {
	var f File
	if _, err := toml.Decode(string(data), &f); err != nil {
		e := &Error{Index: -1, Msg: err.Error()}
		var pe toml.ParseError
		if errors.As(err, &pe) {
			e.Line = pe.Position.Line
			e.Msg = pe.Message
		}
		return nil, ErrorList{e}
	}
	return &f, nil
}

// Assemble resolves every line of f into an instruction. It reports all
// bad lines at once as an ErrorList.
func Assemble(f *File, reg *vm.Registry) (ir.Program, error) {
	b := ir.NewBuilder(f.Name)
	var errs ErrorList

	for i, line := range f.Code {
		in, err := assembleLine(line, reg)
		if err != nil {
			errs = append(errs, &Error{Index: i, Op: line.Op, Msg: err.Error()})
			continue
		}
		b.Emit(in.Op(), in.Params()...)
	}

	if len(errs) > 0 {
		return ir.Program{}, errs
	}
	return b.Program(), nil
}

// AssembleSource parses and assembles a program file's contents. name is
// used when the file does not declare one.
func AssembleSource(name string, data []byte, reg *vm.Registry) (ir.Program, error) {
	f, err := Parse(data)
	if err != nil {
		return ir.Program{}, err
	}
	if f.Name == "" {
		f.Name = name
	}

	p, err := Assemble(f, reg)
	if errs := Errors(err); len(errs) > 0 {
		lines := codeLines(data)
		for _, e := range errs {
			if e.Index >= 0 && e.Index < len(lines) {
				e.Line = lines[e.Index]
			}
		}
		return p, errs
	}
	return p, nil
}

// LoadFile reads and assembles the program file at path.
func LoadFile(path string, reg *vm.Registry) (ir.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ir.Program{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), Extension)
	p, err := AssembleSource(name, data, reg)
	if err != nil {
		return p, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// codeLines returns the 1-based line of each [[code]] header.
func codeLines(data []byte) []int {
	var lines []int
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		if strings.TrimSpace(sc.Text()) == "[[code]]" {
			lines = append(lines, n)
		}
	}
	return lines
}
