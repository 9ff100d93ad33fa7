package vm

import (
	"fmt"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/chazu/doml/pkg/ir"
)

// Severity ranks a diagnostic.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable name for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", uint8(s))
	}
}

// Diagnostic is a human-readable message about a non-fatal failure.
type Diagnostic struct {
	Severity        Severity
	Message         string
	IncludeLocation bool      // Whether Op and Index locate the failure
	Op              ir.Opcode // Failing instruction's opcode
	Index           int       // Failing instruction's position, -1 if unknown
	Owner           string    // Owning host type, if a binding was involved
}

// String renders the diagnostic as "error: [0003 CALL_N] message (owner)".
func (d Diagnostic) String() string {
	s := d.Severity.String() + ": "
	if d.IncludeLocation {
		s += fmt.Sprintf("[%04d %s] ", d.Index, d.Op)
	}
	s += d.Message
	if d.Owner != "" {
		s += " (" + d.Owner + ")"
	}
	return s
}

// Sink receives diagnostics. The interpreter calls it on every non-fatal
// instruction failure and is otherwise silent.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(d Diagnostic)

// Report calls f(d).
func (f SinkFunc) Report(d Diagnostic) { f(d) }

// Collector is a Sink that keeps every diagnostic in memory.
type Collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// Report appends d.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.diags = append(c.diags, d)
	c.mu.Unlock()
}

// Diagnostics returns a copy of the collected diagnostics.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)
	return out
}

// Count returns how many diagnostics of severity s were collected.
func (c *Collector) Count(s Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.diags {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// Reset drops collected diagnostics.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.diags = nil
	c.mu.Unlock()
}

// MultiSink fans each diagnostic out to every sink in order.
type MultiSink []Sink

// Report forwards d to every non-nil sink.
func (m MultiSink) Report(d Diagnostic) {
	for _, s := range m {
		if s != nil {
			s.Report(d)
		}
	}
}

// LogSink writes diagnostics to a commonlog logger.
type LogSink struct {
	Log commonlog.Logger
}

// NewLogSink returns a sink writing to the "doml.vm" logger.
func NewLogSink() *LogSink {
	return &LogSink{Log: commonlog.GetLogger("doml.vm")}
}

// Report logs d at the level matching its severity.
func (s *LogSink) Report(d Diagnostic) {
	var kv []any
	if d.IncludeLocation {
		kv = append(kv, "op", d.Op.String(), "index", d.Index)
	}
	if d.Owner != "" {
		kv = append(kv, "owner", d.Owner)
	}

	switch d.Severity {
	case SeverityError:
		s.Log.Error(d.Message, kv...)
	case SeverityWarning:
		s.Log.Warning(d.Message, kv...)
	default:
		s.Log.Info(d.Message, kv...)
	}
}
