// Package journal persists interpreter diagnostics to a SQLite database so
// failures from earlier runs can be listed and compared.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/chazu/doml/pkg/ir"
	"github.com/chazu/doml/vm"
)

const schema = `
CREATE TABLE IF NOT EXISTS diagnostics (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	run       TEXT    NOT NULL,
	seq       INTEGER NOT NULL,
	at        INTEGER NOT NULL,
	severity  INTEGER NOT NULL,
	message   TEXT    NOT NULL,
	located   INTEGER NOT NULL,
	op        INTEGER NOT NULL,
	idx       INTEGER NOT NULL,
	owner     TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS diagnostics_run ON diagnostics(run, seq);
`

// Entry is one journaled diagnostic.
type Entry struct {
	Run        string
	Seq        int // Position within the run, from 0
	Time       time.Time
	Diagnostic vm.Diagnostic
}

// Journal is an open diagnostics database.
type Journal struct {
	db  *sql.DB
	log commonlog.Logger
}

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open journal %s: %w", path, err)
	}
	// A single connection keeps writes from one process ordered.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot initialize journal %s: %w", path, err)
	}
	return &Journal{db: db, log: commonlog.GetLogger("doml.journal")}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append records d as the next entry of run. The sequence number continues
// from the run's last entry, so several sinks on one run never collide.
func (j *Journal) Append(run string, d vm.Diagnostic) error {
	_, err := j.db.Exec(
		`INSERT INTO diagnostics (run, seq, at, severity, message, located, op, idx, owner)
		 SELECT ?, COALESCE(MAX(seq) + 1, 0), ?, ?, ?, ?, ?, ?, ?
		 FROM diagnostics WHERE run = ?`,
		run, time.Now().UnixNano(), int(d.Severity), d.Message,
		d.IncludeLocation, int(d.Op), d.Index, d.Owner, run,
	)
	if err != nil {
		return fmt.Errorf("journal append: %w", err)
	}
	return nil
}

// Entries returns run's diagnostics in the order they were reported.
func (j *Journal) Entries(run string) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT run, seq, at, severity, message, located, op, idx, owner
		 FROM diagnostics WHERE run = ? ORDER BY seq`, run)
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			at       int64
			severity int
			op       int
		)
		d := &e.Diagnostic
		if err := rows.Scan(&e.Run, &e.Seq, &at, &severity, &d.Message,
			&d.IncludeLocation, &op, &d.Index, &d.Owner); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		e.Time = time.Unix(0, at)
		d.Severity = vm.Severity(severity)
		d.Op = ir.Opcode(op)
		out = append(out, e)
	}
	return out, rows.Err()
}

// RunSummary counts one run's journaled diagnostics.
type RunSummary struct {
	Run    string
	Count  int
	Errors int
	Last   time.Time
}

// Runs lists every journaled run, most recent first.
func (j *Journal) Runs() ([]RunSummary, error) {
	rows, err := j.db.Query(
		`SELECT run, COUNT(*), SUM(severity = ?), MAX(at)
		 FROM diagnostics GROUP BY run ORDER BY MAX(at) DESC, run`,
		int(vm.SeverityError))
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			s    RunSummary
			last int64
		)
		if err := rows.Scan(&s.Run, &s.Count, &s.Errors, &last); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		s.Last = time.Unix(0, last)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Sink returns a vm.Sink appending to run. Write failures are logged, since
// sinks cannot return errors.
func (j *Journal) Sink(run string) vm.Sink {
	return &sink{j: j, run: run}
}

type sink struct {
	j   *Journal
	run string
}

func (s *sink) Report(d vm.Diagnostic) {
	if err := s.j.Append(s.run, d); err != nil {
		s.j.log.Error(err.Error(), "run", s.run)
	}
}
