package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/chazu/doml/journal"
	"github.com/chazu/doml/manifest"
)

// handleJournalCommand processes the `doml journal` subcommand.
// Usage:
//
//	doml journal                    # runs in the [log] journal
//	doml journal -run NAME diag.db  # one run's diagnostics
func handleJournalCommand(args []string, m *manifest.Manifest) {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	run := fs.String("run", "", "Show the diagnostics of this run")
	fs.Parse(args)

	var path string
	switch {
	case fs.NArg() == 1:
		path = fs.Arg(0)
	case fs.NArg() == 0 && m != nil && m.Log.Journal != "":
		path = m.JournalPath()
	default:
		fmt.Fprintln(os.Stderr, "Usage: doml journal [-run name] journal.db")
		os.Exit(2)
	}

	j, err := journal.Open(path)
	if err != nil {
		fatalf("%v", err)
	}
	defer j.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if *run == "" {
		runs, err := j.Runs()
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Fprintln(w, "RUN\tDIAGNOSTICS\tERRORS\tLAST")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", r.Run, r.Count, r.Errors, r.Last.Format(time.RFC3339))
		}
		return
	}

	entries, err := j.Entries(*run)
	if err != nil {
		fatalf("%v", err)
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\n", e.Seq, e.Time.Format(time.RFC3339), e.Diagnostic)
	}
}
