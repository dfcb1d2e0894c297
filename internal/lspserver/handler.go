// Package lspserver implements the editor-facing language server: run the
// four compilation phases on didOpen/didChange and publish whatever
// diag.Error results as an LSP diagnostic, grounded on the same
// glsp/protocol_3_16 wiring kanso's internal/lsp package uses.
package lspserver

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ccaot/internal/diag"
	"ccaot/internal/ir"
	"ccaot/internal/pipeline"
)

// Handler implements the LSP server methods for this compiler's source
// language: one compiled Module cached per open document.
type Handler struct {
	mu       sync.RWMutex
	content  map[string]string
	modules  map[string]*ir.Module
	userDirs []string
}

// NewHandler creates an empty Handler. userDirs seeds the quoted-include
// search path every didOpen/didChange recompile uses.
func NewHandler(userDirs []string) *Handler {
	return &Handler{
		content:  make(map[string]string),
		modules:  make(map[string]*ir.Module),
		userDirs: userDirs,
	}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.recompileAndPublish(ctx, params.TextDocument.URI)
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	return h.recompileAndPublish(ctx, params.TextDocument.URI)
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.content, path)
	delete(h.modules, path)
	h.mu.Unlock()
	return nil
}

func (h *Handler) recompileAndPublish(ctx *glsp.Context, rawURI protocol.DocumentUri) error {
	path, err := uriToPath(rawURI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", rawURI, err)
	}

	res, compErr := pipeline.Compile(path, h.userDirs, nil)
	if compErr != nil {
		sendDiagnostics(ctx, rawURI, []protocol.Diagnostic{toDiagnostic(compErr)})
		return nil
	}

	h.mu.Lock()
	h.modules[path] = res.Module
	h.mu.Unlock()

	sendDiagnostics(ctx, rawURI, nil)
	return nil
}

func toDiagnostic(err *diag.Error) protocol.Diagnostic {
	line := uint32(0)
	col := uint32(0)
	if err.Pos.Line > 0 {
		line = uint32(err.Pos.Line - 1)
		col = uint32(err.Pos.Column - 1)
	}
	source := string(err.Stage)
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + 1},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   &source,
		Message:  fmt.Sprintf("[%s] %s", err.Code, err.Message),
	}
}

func sendDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}
	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}
