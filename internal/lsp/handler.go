package lsp

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"progcheck/internal/config"
	"progcheck/internal/verify"
	"progcheck/token"
)

// document is an open text document and the session that analyzes it.
type document struct {
	mu      sync.Mutex
	text    string
	version int
	session *verify.Session
}

func (d *document) snapshot() (string, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text, d.version
}

// publish runs send if version is still current and reports whether it did.
func (d *document) publish(version int, send func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.version != version {
		return false
	}
	send()
	return true
}

func (d *document) update(text string) {
	d.mu.Lock()
	d.text = text
	d.version++
	d.mu.Unlock()
}

// Handler implements the LSP server handlers for progcheck programs.
// Documents are synchronized in full and re-verified on every change.
type Handler struct {
	checker *verify.Checker
	log     commonlog.Logger

	mu        sync.RWMutex
	documents map[string]*document
	// wg tracks background verification runs.
	wg sync.WaitGroup
}

func NewHandler(cfg config.Config) *Handler {
	return &Handler{
		checker:   cfg.NewChecker(),
		log:       commonlog.GetLogger("progcheck.lsp"),
		documents: make(map[string]*document),
	}
}

// Initialize responds to the LSP client's initialize request and advertises the server's capabilities
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	h.log.Info("initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	h.log.Info("initialized")
	return nil
}

// Shutdown waits for running verifications before the server exits.
func (h *Handler) Shutdown(ctx *glsp.Context) error {
	h.log.Info("shutdown")
	h.wg.Wait()
	return nil
}

func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	h.log.Infof("opened %s", uri)

	doc := &document{session: verify.NewSession(h.checker)}
	doc.update(params.TextDocument.Text)

	h.mu.Lock()
	h.documents[uri] = doc
	h.mu.Unlock()

	h.analyze(ctx, uri, doc)
	return nil
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	h.log.Infof("closed %s", params.TextDocument.URI)

	h.mu.Lock()
	delete(h.documents, params.TextDocument.URI)
	h.mu.Unlock()
	return nil
}

// TextDocumentDidChange takes the last whole-document change; the server
// only advertises full synchronization.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc := h.document(uri)
	if doc == nil {
		return nil
	}

	for _, change := range params.ContentChanges {
		if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			doc.update(whole.Text)
		}
	}
	h.analyze(ctx, uri, doc)
	return nil
}

// TextDocumentCompletion offers the keywords and the variables of the document.
func (h *Handler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	items := []protocol.CompletionItem{}
	keywordKind := protocol.CompletionItemKindKeyword
	for _, kw := range token.Keywords {
		items = append(items, protocol.CompletionItem{Label: kw, Kind: &keywordKind})
	}

	if doc := h.document(params.TextDocument.URI); doc != nil {
		text, _ := doc.snapshot()
		names := identifiers(text)
		sort.Strings(names)
		variableKind := protocol.CompletionItemKindVariable
		for _, name := range names {
			items = append(items, protocol.CompletionItem{Label: name, Kind: &variableKind})
		}
	}

	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

func (h *Handler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	doc := h.document(params.TextDocument.URI)
	if doc == nil {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}
	text, _ := doc.snapshot()
	return &protocol.SemanticTokens{Data: encodeSemanticTokens(collectSemanticTokens(text))}, nil
}

func (h *Handler) document(uri protocol.DocumentUri) *document {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.documents[uri]
}

// analyze verifies doc in the background and publishes the diagnostics.
// While a run is in flight the session rejects new ones; the running one
// starts over when the text changed underneath it.
func (h *Handler) analyze(ctx *glsp.Context, uri protocol.DocumentUri, doc *document) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			text, version := doc.snapshot()
			diagnostics, err := Diagnose(context.Background(), doc.session, text)
			if errors.Is(err, verify.ErrBusy) {
				return
			}
			if doc.publish(version, func() { sendDiagnosticNotification(ctx, uri, diagnostics) }) {
				return
			}
		}
	}()
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	commonlog.GetLogger("progcheck.lsp").Debugf("publishing %d diagnostics for %s", len(diagnostics), uri)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
