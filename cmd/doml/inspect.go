package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chazu/doml/asm"
	"github.com/chazu/doml/bindings"
	"github.com/chazu/doml/manifest"
	"github.com/chazu/doml/vm"
)

// handleDisCommand processes the `doml dis` subcommand.
func handleDisCommand(args []string, m *manifest.Manifest) {
	var path string
	switch {
	case len(args) == 1:
		path = args[0]
	case len(args) == 0 && m != nil && m.Project.Entry != "":
		path = m.EntryPath()
	default:
		fmt.Fprintln(os.Stderr, "Usage: doml dis program"+asm.Extension)
		os.Exit(2)
	}

	reg, err := bindings.NewRegistry()
	if err != nil {
		fatalf("registering bindings: %v", err)
	}
	program, err := asm.LoadFile(path, reg)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Print(program.Disassemble())
}

// handleDumpCommand processes the `doml dump` subcommand, printing a
// snapshot written by `doml run -dump`.
func handleDumpCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: doml dump file")
		os.Exit(2)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fatalf("cannot read %s: %v", args[0], err)
	}
	snap, err := vm.UnmarshalSnapshot(data)
	if err != nil {
		fatalf("%v", err)
	}

	capacity := "unbounded"
	if snap.StackCapacity > 0 {
		capacity = fmt.Sprint(snap.StackCapacity)
	}
	fmt.Printf("stack (%d values, capacity %s):\n", len(snap.Stack), capacity)
	for i := len(snap.Stack) - 1; i >= 0; i-- {
		fmt.Printf("  [%d] %s\n", i, formatSnapshot(snap.Stack[i]))
	}
	fmt.Printf("registers (%d):\n", len(snap.Registers))
	for i, r := range snap.Registers {
		fmt.Printf("  r%d %s\n", i, formatSnapshot(r))
	}
	fmt.Printf("current: %s\n", formatSnapshot(snap.Current))
}

func formatSnapshot(v vm.ValueSnapshot) string {
	switch v.Kind {
	case "int":
		return fmt.Sprintf("%d", v.Int)
	case "float":
		return fmt.Sprintf("%g", v.Float)
	case "decimal":
		return v.Decimal + "d"
	case "text":
		return fmt.Sprintf("%q", v.Text)
	case "bool":
		return fmt.Sprintf("%t", v.Bool)
	case "object":
		return fmt.Sprintf("%s %s", v.Type, v.Repr)
	case "array":
		items := make([]string, len(v.Items))
		for i, it := range v.Items {
			items[i] = formatSnapshot(it)
		}
		return fmt.Sprintf("%s[%s]", v.Elem, strings.Join(items, ", "))
	default:
		return v.Kind
	}
}

// handleBindingsCommand processes the `doml bindings` subcommand.
func handleBindingsCommand() {
	reg, err := bindings.NewRegistry()
	if err != nil {
		fatalf("registering bindings: %v", err)
	}
	for _, b := range reg.Bindings() {
		fmt.Println(b)
	}
}
