package lsp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"unicode"
	"unicode/utf16"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/newstack-cloud/ls-builder/lsp_3_17"

	"github.com/msdscript/msdscript/pkg/msd"
)

const diagnosticSource = "msdscript"

// Handler serves the language server methods. Diagnostics are only pushed
// once SetServer has been called.
type Handler struct {
	mu    sync.Mutex
	files map[string]*File
	srv   *jrpc2.Server
}

// File is an open document along with the result of its last parse.
type File struct {
	Text        string
	Version     lsp.Integer
	Diagnostics []lsp.Diagnostic

	// AST is nil when the text does not parse.
	AST msd.Node

	// Binders maps each variable reference to the *msd.Let or *msd.Fun that
	// binds it. Free variables are absent.
	Binders map[*msd.Var]msd.Node

	lines []string
}

func newFile(text string, version lsp.Integer) *File {
	return &File{
		Text:        text,
		Version:     version,
		Diagnostics: []lsp.Diagnostic{},
		lines:       strings.Split(text, "\n"),
	}
}

func NewHandler() *Handler {
	return &Handler{
		files: make(map[string]*File),
	}
}

func (h *Handler) SetServer(srv *jrpc2.Server) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.srv = srv
}

func (h *Handler) Methods() handler.Map {
	return handler.Map{
		"initialize":              h.handleInitialize,
		"initialized":             h.handleInitialized,
		"shutdown":                h.handleShutdown,
		"exit":                    h.handleExit,
		"textDocument/didOpen":    h.handleTextDocumentDidOpen,
		"textDocument/didChange":  h.handleTextDocumentDidChange,
		"textDocument/didClose":   h.handleTextDocumentDidClose,
		"textDocument/formatting": h.handleTextDocumentFormatting,
		"textDocument/hover":      h.handleTextDocumentHover,
		"textDocument/definition": h.handleTextDocumentDefinition,
		"textDocument/rename":     h.handleTextDocumentRename,
	}
}

func isWindowsDrivePath(path string) bool {
	if len(path) < 4 {
		return false
	}
	return unicode.IsLetter(rune(path[0])) && path[1] == ':'
}

func isWindowsDriveURI(uri string) bool {
	if len(uri) < 4 {
		return false
	}
	return uri[0] == '/' && unicode.IsLetter(rune(uri[1])) && uri[2] == ':'
}

func fromURI(uri string) (string, error) {
	u, err := url.ParseRequestURI(uri)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("only file URIs are supported, got %v", u.Scheme)
	}
	if isWindowsDriveURI(u.Path) {
		u.Path = u.Path[1:]
	}
	return u.Path, nil
}

func toURI(path string) string {
	if isWindowsDrivePath(path) {
		path = "/" + path
	}
	return (&url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(path),
	}).String()
}

func (h *Handler) file(uri string) (*File, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.files[uri]
	return f, ok
}

func (h *Handler) closeFile(ctx context.Context, uri string) error {
	h.mu.Lock()
	_, ok := h.files[uri]
	delete(h.files, uri)
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("document not found: %v", uri)
	}
	// Clear whatever the client is still showing for the closed document.
	return h.publishDiagnostics(ctx, uri, newFile("", 0))
}

// updateFile reparses text and publishes the resulting diagnostics.
func (h *Handler) updateFile(ctx context.Context, uri string, text string, version lsp.Integer) error {
	name := uri
	if fp, err := fromURI(uri); err == nil {
		name = filepath.Base(fp)
	}

	f := newFile(text, version)

	node, err := msd.ParseReader(name, strings.NewReader(text))
	if err != nil {
		slog.DebugContext(ctx, "document does not parse", "uri", uri, "error", err)
		f.Diagnostics = append(f.Diagnostics, f.errorToDiagnostic(err))
	} else {
		f.AST = node
		f.Binders = resolveBinders(node)
		f.Diagnostics = append(f.Diagnostics, f.freeVariableDiagnostics()...)
	}

	h.mu.Lock()
	h.files[uri] = f
	h.mu.Unlock()

	slog.InfoContext(ctx, "file updated", "uri", uri, "version", version, "diagnostics", len(f.Diagnostics))

	return h.publishDiagnostics(ctx, uri, f)
}

func (h *Handler) publishDiagnostics(ctx context.Context, uri string, f *File) error {
	h.mu.Lock()
	srv := h.srv
	h.mu.Unlock()
	if srv == nil {
		return nil
	}
	params := lsp.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: f.Diagnostics,
	}
	if f.Version > 0 {
		version := lsp.UInteger(f.Version)
		params.Version = &version
	}
	return srv.Notify(ctx, "textDocument/publishDiagnostics", params)
}

func diagnostic(rng lsp.Range, severity lsp.DiagnosticSeverity, message string) lsp.Diagnostic {
	source := diagnosticSource
	return lsp.Diagnostic{
		Range:    rng,
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

func (f *File) errorToDiagnostic(err error) lsp.Diagnostic {
	var perr *msd.ParseError
	if !errors.As(err, &perr) {
		return diagnostic(lsp.Range{}, lsp.DiagnosticSeverityError, err.Error())
	}
	msg := perr.Kind.Error()
	if perr.Detail != "" {
		msg += ": " + perr.Detail
	}
	var rng lsp.Range
	if perr.Location != nil {
		rng = f.locationRange(perr.Location)
	}
	return diagnostic(rng, lsp.DiagnosticSeverityError, msg)
}

// freeVariableDiagnostics warns about every reference that evaluation would
// reject as unbound. Function bodies only see their own parameter, so a name
// bound by an enclosing _let is still free inside a _fun.
func (f *File) freeVariableDiagnostics() []lsp.Diagnostic {
	var diags []lsp.Diagnostic
	f.AST.Walk(func(n msd.Node) bool {
		v, ok := n.(*msd.Var)
		if !ok {
			return true
		}
		if _, bound := f.Binders[v]; bound || v.Loc == nil {
			return true
		}
		diags = append(diags, diagnostic(f.locationRange(v.Loc), lsp.DiagnosticSeverityWarning, "free variable: "+v.Name))
		return true
	})
	return diags
}

// The parser counts columns in runes; the protocol counts UTF-16 code units.

// locationRange converts a 1-based source location into a 0-based range.
func (f *File) locationRange(loc *msd.SourceLocation) lsp.Range {
	line := loc.Line - 1
	start := loc.Column - 1
	return lsp.Range{
		Start: lsp.Position{Line: lsp.UInteger(line), Character: lsp.UInteger(f.toUTF16(line, start))},
		End:   lsp.Position{Line: lsp.UInteger(line), Character: lsp.UInteger(f.toUTF16(line, start+max(loc.Length, 1)))},
	}
}

// toUTF16 converts a 0-based rune column into a UTF-16 offset. Columns past
// the end of the line count one unit per rune.
func (f *File) toUTF16(line, col int) int {
	var text string
	if line >= 0 && line < len(f.lines) {
		text = f.lines[line]
	}
	units := 0
	for _, r := range text {
		if col == 0 {
			return units
		}
		units += utf16.RuneLen(r)
		col--
	}
	return units + col
}

// fromUTF16 converts a UTF-16 offset into a 0-based rune column. An offset
// inside a surrogate pair resolves to that rune.
func (f *File) fromUTF16(line, units int) int {
	var text string
	if line >= 0 && line < len(f.lines) {
		text = f.lines[line]
	}
	col := 0
	for _, r := range text {
		n := utf16.RuneLen(r)
		if units < n {
			return col
		}
		units -= n
		col++
	}
	return col + units
}

// documentEnd is the position just past the last character of text.
func documentEnd(text string) lsp.Position {
	line := strings.Count(text, "\n")
	last := text[strings.LastIndex(text, "\n")+1:]
	return lsp.Position{
		Line:      lsp.UInteger(line),
		Character: lsp.UInteger(len(utf16.Encode([]rune(last)))),
	}
}
