package server

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/doml/asm"
	"github.com/chazu/doml/pkg/ir"
	"github.com/chazu/doml/vm"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "doml-lsp"

// LspServer checks DOML program files as they are edited. Documents are
// assembled against the binding registry on every change and assembler
// errors are published as diagnostics.
type LspServer struct {
	worker *Worker

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
	log     commonlog.Logger
}

// NewLSP creates a new LSP server resolving bindings through reg.
func NewLSP(reg *vm.Registry) *LspServer {
	s := &LspServer{
		worker:  NewWorker(reg),
		docs:    make(map[string]string),
		version: "0.1.0",
		log:     commonlog.GetLogger("doml.lsp"),
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.log.Info("DOML LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"\"", "."},
	}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	s.worker.Stop()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}

	return s.worker.Do(func(reg *vm.Registry) any {
		return complete(reg, prefix)
	})
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}

	res, err := s.worker.Do(func(reg *vm.Registry) any {
		return hover(reg, word)
	})
	if err != nil || res == nil {
		return nil, nil
	}
	return res.(*protocol.Hover), nil
}

func (s *LspServer) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// --- Registry-backed logic (called on worker goroutine) ---

func complete(reg *vm.Registry, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	upper := strings.ToUpper(prefix)

	for _, op := range ir.AllOpcodes() {
		info := ir.GetOpcodeInfo(op)
		if !strings.HasPrefix(info.Name, upper) {
			continue
		}
		kind := protocol.CompletionItemKindKeyword
		detail := fmt.Sprintf("%s opcode (%s)", strings.ToLower(info.Family.String()), info.Status)
		name := info.Name
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &name,
		})
	}

	seen := make(map[string]bool)
	for _, b := range reg.Bindings() {
		if seen[b.Owner] || !strings.HasPrefix(strings.ToLower(b.Owner), strings.ToLower(prefix)) {
			continue
		}
		seen[b.Owner] = true
		kind := protocol.CompletionItemKindClass
		detail := "bound type"
		owner := b.Owner
		items = append(items, protocol.CompletionItem{
			Label:      owner,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &owner,
		})
	}

	// Limit results
	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items
}

func hover(reg *vm.Registry, word string) *protocol.Hover {
	var b strings.Builder

	if op, ok := ir.LookupOpcode(strings.ToUpper(word)); ok {
		info := ir.GetOpcodeInfo(op)
		fmt.Fprintf(&b, "**%s** (0x%02X)\n\n", info.Name, byte(op))
		fmt.Fprintf(&b, "Family: %s  \nStatus: %s\n\n", info.Family, info.Status)
		if len(info.Operands) == 0 {
			b.WriteString("No operands")
		} else {
			kinds := make([]string, len(info.Operands))
			for i, k := range info.Operands {
				kinds[i] = k.String()
			}
			fmt.Fprintf(&b, "Operands: `%s`", strings.Join(kinds, ", "))
		}
		return markdown(b.String())
	}

	var members []string
	for _, fb := range reg.Bindings() {
		if fb.Owner == word {
			members = append(members, fb.String())
		}
	}
	if len(members) == 0 {
		return nil
	}
	sort.Strings(members)
	fmt.Fprintf(&b, "**%s**\n\n%d bindings:\n", word, len(members))
	for _, m := range members {
		fmt.Fprintf(&b, "- `%s`\n", m)
	}
	return markdown(b.String())
}

func markdown(s string) *protocol.Hover {
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: s,
		},
	}
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	res, err := s.worker.Do(func(reg *vm.Registry) any {
		return documentDiagnostics(programName(uri), text, reg)
	})
	if err != nil {
		s.log.Errorf("checking %s: %s", uri, err)
		return
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: res.([]protocol.Diagnostic),
	})
}

// documentDiagnostics assembles text and converts every assembler error to
// an LSP diagnostic spanning the offending source line.
func documentDiagnostics(name, text string, reg *vm.Registry) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	_, err := asm.AssembleSource(name, []byte(text), reg)
	if err == nil {
		return diagnostics
	}

	errs := asm.Errors(err)
	if len(errs) == 0 {
		errs = asm.ErrorList{{Index: -1, Msg: err.Error()}}
	}

	lines := strings.Split(text, "\n")
	severity := protocol.DiagnosticSeverityError
	source := lspName
	for _, e := range errs {
		line := 0
		if e.Line > 0 {
			line = e.Line - 1
		}
		end := 0
		if line < len(lines) {
			end = len(strings.TrimRight(lines[line], "\r"))
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: protocol.UInteger(line), Character: 0},
				End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(end)},
			},
			Severity: &severity,
			Source:   &source,
			Message:  e.Error(),
		})
	}
	return diagnostics
}

// programName derives a program name from a document URI,
// e.g. "file:///src/point.doml.toml" → "point".
func programName(uri protocol.DocumentUri) string {
	return strings.TrimSuffix(path.Base(string(uri)), asm.Extension)
}

// --- Text extraction helpers ---

func isWordChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '.'
}

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 && isWordChar(rune(line[start-1])) {
		start--
	}

	return line[start:col]
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && isWordChar(rune(line[start-1])) {
		start--
	}
	end := col
	for end < len(line) && isWordChar(rune(line[end])) {
		end++
	}

	return line[start:end]
}

func boolPtr(b bool) *bool {
	return &b
}
