package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chazu/doml/asm"
	"github.com/chazu/doml/bindings"
	"github.com/chazu/doml/journal"
	"github.com/chazu/doml/manifest"
	"github.com/chazu/doml/pkg/ir"
	"github.com/chazu/doml/vm"
)

// runOptions is the resolved configuration for one `doml run`.
type runOptions struct {
	program   string
	mode      vm.Mode
	trace     bool
	stackSize int
	registers int
	dump      string
	journal   string
	run       string
}

// handleRunCommand processes the `doml run` subcommand.
// Usage:
//
//	doml run                             # [project] entry from doml.toml
//	doml run point.doml.toml             # a single program
//	doml run -unsafe -dump out.cbor p.doml.toml
func handleRunCommand(args []string, m *manifest.Manifest, verbose bool) {
	opts, err := parseRunFlags(args, m)
	if err != nil {
		fatalf("%v", err)
	}

	reg, err := bindings.NewRegistry()
	if err != nil {
		fatalf("registering bindings: %v", err)
	}

	program, err := asm.LoadFile(opts.program, reg)
	if err != nil {
		fatalf("%v", err)
	}

	code := execute(program, opts, verbose)
	os.Exit(code)
}

func parseRunFlags(args []string, m *manifest.Manifest) (*runOptions, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	unsafe := fs.Bool("unsafe", false, "Skip operand validation")
	trace := fs.Bool("trace", false, "Log every dispatched instruction at debug level")
	dump := fs.String("dump", "", "Write a CBOR runtime snapshot to this file after execution")
	journalPath := fs.String("journal", "", "Append diagnostics to this SQLite journal")
	runName := fs.String("run", "", "Journal run name (default: program name and start time)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts := &runOptions{
		trace:   *trace,
		dump:    *dump,
		journal: *journalPath,
		run:     *runName,
	}

	if m != nil {
		mode, err := vm.ParseMode(m.Runtime.Mode)
		if err != nil {
			return nil, err
		}
		opts.mode = mode
		opts.trace = opts.trace || m.Runtime.Trace
		opts.stackSize = m.Runtime.StackSize
		opts.registers = m.Runtime.RegisterSize
		if opts.journal == "" {
			opts.journal = m.JournalPath()
		}
	}
	if *unsafe {
		opts.mode = vm.Unsafe
	}

	switch {
	case fs.NArg() > 1:
		return nil, fmt.Errorf("run takes one program, got %d", fs.NArg())
	case fs.NArg() == 1:
		opts.program = fs.Arg(0)
	case m != nil && m.Project.Entry != "":
		opts.program = m.EntryPath()
	default:
		return nil, fmt.Errorf("no program given and no [project] entry in %s", manifest.FileName)
	}

	if opts.run == "" {
		base := strings.TrimSuffix(filepath.Base(opts.program), asm.Extension)
		opts.run = fmt.Sprintf("%s@%s", base, time.Now().UTC().Format(time.RFC3339Nano))
	}
	return opts, nil
}

// execute runs program and returns the process exit code: 0 on success,
// 1 if any instruction failed, 2 if execution stopped on a fatal error.
func execute(program ir.Program, opts *runOptions, verbose bool) int {
	rt := vm.NewRuntime()
	if err := rt.ReserveStack(opts.stackSize); err != nil {
		fatalf("%v", err)
	}
	if err := rt.ReserveRegisters(opts.registers); err != nil {
		fatalf("%v", err)
	}

	var collected vm.Collector
	sinks := vm.MultiSink{vm.NewLogSink(), &collected}
	if opts.journal != "" {
		j, err := journal.Open(opts.journal)
		if err != nil {
			fatalf("%v", err)
		}
		defer j.Close()
		sinks = append(sinks, j.Sink(opts.run))
	}

	interp := vm.NewInterpreter(program,
		vm.WithRuntime(rt),
		vm.WithSink(sinks),
		vm.WithTrace(opts.trace),
	)

	start := time.Now()
	execErr := interp.Execute(opts.mode)
	elapsed := time.Since(start)

	if opts.dump != "" {
		if err := writeSnapshot(opts.dump, rt); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	stats := interp.Stats()
	if verbose {
		fmt.Printf("%s: %d instructions in %v (%s mode), %d failed\n",
			program.Name, stats.Executed, elapsed, opts.mode, stats.Failed)
	}

	if execErr != nil {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", execErr)
		return 2
	}
	if collected.Count(vm.SeverityError) > 0 {
		return 1
	}
	return 0
}

func writeSnapshot(path string, rt *vm.Runtime) error {
	data, err := vm.MarshalSnapshot(rt.Snapshot())
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
