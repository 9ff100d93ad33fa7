// Command doml assembles, runs and inspects DOML IR programs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/doml/manifest"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	logVerbosity := flag.Int("log-verbosity", 0, "Log verbosity (overrides doml.toml [log] verbosity when non-zero)")
	logFile := flag.String("log-file", "", "Write logs to this file instead of stderr")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doml [options] <command> [arguments]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  run [-unsafe] [-trace] [-dump file] [-journal db] [program]\n")
		fmt.Fprintf(os.Stderr, "                        Assemble and execute a program (default: [project] entry)\n")
		fmt.Fprintf(os.Stderr, "  dis program           Print a program's disassembly\n")
		fmt.Fprintf(os.Stderr, "  dump file             Print a runtime snapshot written by run -dump\n")
		fmt.Fprintf(os.Stderr, "  wrap [-output dir] [packages...]\n")
		fmt.Fprintf(os.Stderr, "                        Generate bindings (default: [go-wrap] packages)\n")
		fmt.Fprintf(os.Stderr, "  journal [-run name] [db]\n")
		fmt.Fprintf(os.Stderr, "                        List journaled runs, or one run's diagnostics\n")
		fmt.Fprintf(os.Stderr, "  bindings              List the standard bindings\n")
		fmt.Fprintf(os.Stderr, "  lsp                   Start the language server on stdio\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(1)
	}
	configureLogging(m, *logVerbosity, *logFile)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "run":
		handleRunCommand(rest, m, *verbose)
	case "dis":
		handleDisCommand(rest, m)
	case "dump":
		handleDumpCommand(rest)
	case "wrap":
		handleWrapCommand(rest, m, *verbose)
	case "journal":
		handleJournalCommand(rest, m)
	case "bindings":
		handleBindingsCommand()
	case "lsp":
		handleLSPCommand()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
}

// configureLogging applies the [log] section, letting command-line flags
// win when set.
func configureLogging(m *manifest.Manifest, verbosity int, file string) {
	var path *string
	if m != nil {
		if verbosity == 0 {
			verbosity = m.Log.Verbosity
		}
		if file == "" {
			file = m.LogFilePath()
		}
	}
	if file != "" {
		path = &file
	}
	commonlog.Configure(verbosity, path)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
