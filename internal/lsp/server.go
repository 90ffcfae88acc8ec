// Package lsp serves completion and hover for shell documents over the
// language server protocol on stdio.
package lsp

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
	"go.uber.org/zap"

	"github.com/temirov/shellhint/internal/analyzer"
	"github.com/temirov/shellhint/internal/geometry"
	"github.com/temirov/shellhint/internal/session"
	"github.com/temirov/shellhint/internal/types"
)

const (
	completionTriggerCharacter = " "

	logFieldURI     = "uri"
	logFieldClient  = "client"
	logFieldMessage = "detail"

	logMessageInitialized      = "language server initialized"
	logMessageDocumentUpdate   = "document update rejected"
	logMessageDocumentMissing  = "request for unopened document"
	logMessageUnknownChange    = "unrecognized content change ignored"
	logMessageShutdown         = "language server shutting down"
	logMessageClientConnected  = "client connected"
	logMessageUnknownClientApp = "unknown"
)

// Server adapts the analyzer and the document store to protocol handlers.
type Server struct {
	name      string
	version   string
	analyzer  *analyzer.Analyzer
	documents *session.Store
	logger    *zap.Logger
	handler   protocol.Handler
}

// NewServer wires protocol handlers. A nil logger disables logging.
func NewServer(name string, version string, documentAnalyzer *analyzer.Analyzer, documents *session.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	server := &Server{
		name:      name,
		version:   version,
		analyzer:  documentAnalyzer,
		documents: documents,
		logger:    logger,
	}
	server.handler = protocol.Handler{
		Initialize:             server.initialize,
		Initialized:            server.initialized,
		Shutdown:               server.shutdown,
		SetTrace:               server.setTrace,
		TextDocumentDidOpen:    server.didOpen,
		TextDocumentDidChange:  server.didChange,
		TextDocumentDidClose:   server.didClose,
		TextDocumentCompletion: server.completion,
		TextDocumentHover:      server.hover,
	}
	return server
}

// RunStdio serves a single client on stdin and stdout until it disconnects.
func (server *Server) RunStdio() error {
	return glspserver.NewServer(&server.handler, server.name, false).RunStdio()
}

func (server *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	clientName := logMessageUnknownClientApp
	if params != nil && params.ClientInfo != nil {
		clientName = params.ClientInfo.Name
	}
	server.logger.Info(logMessageClientConnected, zap.String(logFieldClient, clientName))

	capabilities := server.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindIncremental
	openClose := true
	capabilities.TextDocumentSync = protocol.TextDocumentSyncOptions{OpenClose: &openClose, Change: &syncKind}
	capabilities.CompletionProvider = &protocol.CompletionOptions{TriggerCharacters: []string{completionTriggerCharacter}}
	capabilities.HoverProvider = true

	version := server.version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo:   &protocol.InitializeResultServerInfo{Name: server.name, Version: &version},
	}, nil
}

func (server *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	server.logger.Debug(logMessageInitialized)
	return nil
}

func (server *Server) shutdown(_ *glsp.Context) error {
	server.logger.Debug(logMessageShutdown)
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (server *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (server *Server) didOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	document := params.TextDocument
	if openError := server.documents.Open(context.Background(), document.URI, document.Version, document.Text); openError != nil {
		server.logger.Warn(logMessageDocumentUpdate, zap.String(logFieldURI, document.URI), zap.Error(openError))
	}
	return nil
}

func (server *Server) didChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	changes := make([]session.Change, 0, len(params.ContentChanges))
	for _, contentChange := range params.ContentChanges {
		change, recognized := toSessionChange(contentChange)
		if !recognized {
			server.logger.Debug(logMessageUnknownChange, zap.String(logFieldURI, params.TextDocument.URI))
			continue
		}
		changes = append(changes, change)
	}
	if changeError := server.documents.Change(context.Background(), params.TextDocument.URI, params.TextDocument.Version, changes); changeError != nil {
		server.logger.Warn(logMessageDocumentUpdate, zap.String(logFieldURI, params.TextDocument.URI), zap.Error(changeError))
	}
	return nil
}

func (server *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	if closeError := server.documents.Close(params.TextDocument.URI); closeError != nil {
		server.logger.Debug(logMessageDocumentMissing, zap.String(logFieldURI, params.TextDocument.URI), zap.Error(closeError))
	}
	return nil
}

func (server *Server) completion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	document, found := server.snapshot(params.TextDocument.URI)
	if !found {
		return []protocol.CompletionItem{}, nil
	}
	candidates := server.analyzer.ResolveCompletions(context.Background(), document.Text, document.Tree.Root(), fromProtocolPosition(params.Position))
	items := make([]protocol.CompletionItem, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, toCompletionItem(candidate))
	}
	return items, nil
}

func (server *Server) hover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	document, found := server.snapshot(params.TextDocument.URI)
	if !found {
		return nil, nil
	}
	resolved := server.analyzer.ResolveHover(context.Background(), document.Text, document.Tree.Root(), fromProtocolPosition(params.Position))
	if resolved == nil {
		return nil, nil
	}
	hover := &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: resolved.Markdown},
	}
	if resolved.Range != nil {
		hoverRange := toProtocolRange(*resolved.Range)
		hover.Range = &hoverRange
	}
	return hover, nil
}

func (server *Server) snapshot(uri string) (session.Document, bool) {
	document, snapshotError := server.documents.Snapshot(uri)
	if snapshotError != nil {
		server.logger.Debug(logMessageDocumentMissing, zap.String(logFieldURI, uri), zap.String(logFieldMessage, snapshotError.Error()))
		return session.Document{}, false
	}
	return document, true
}

func toSessionChange(contentChange any) (session.Change, bool) {
	switch typed := contentChange.(type) {
	case protocol.TextDocumentContentChangeEvent:
		return rangedChange(typed), true
	case *protocol.TextDocumentContentChangeEvent:
		return rangedChange(*typed), true
	case protocol.TextDocumentContentChangeEventWhole:
		return session.Change{Text: typed.Text}, true
	case *protocol.TextDocumentContentChangeEventWhole:
		return session.Change{Text: typed.Text}, true
	default:
		return session.Change{}, false
	}
}

func rangedChange(event protocol.TextDocumentContentChangeEvent) session.Change {
	if event.Range == nil {
		return session.Change{Text: event.Text}
	}
	changeRange := fromProtocolRange(*event.Range)
	return session.Change{Range: &changeRange, Text: event.Text}
}

func toCompletionItem(candidate types.Candidate) protocol.CompletionItem {
	kind := completionItemKind(candidate.Kind)
	sortText := candidate.SortText
	item := protocol.CompletionItem{Label: candidate.Label, Kind: &kind, SortText: &sortText}
	if candidate.Detail != "" {
		detail := candidate.Detail
		item.Detail = &detail
	}
	if candidate.InsertText != "" {
		insertText := candidate.InsertText
		item.InsertText = &insertText
	}
	if candidate.IsSnippet {
		insertTextFormat := protocol.InsertTextFormatSnippet
		item.InsertTextFormat = &insertTextFormat
	}
	return item
}

func completionItemKind(candidateKind string) protocol.CompletionItemKind {
	switch candidateKind {
	case types.CandidateKindSubcommand:
		return protocol.CompletionItemKindModule
	case types.CandidateKindOption:
		return protocol.CompletionItemKindProperty
	default:
		return protocol.CompletionItemKindFunction
	}
}

func fromProtocolPosition(position protocol.Position) geometry.Position {
	return geometry.NewPosition(int(position.Line), int(position.Character))
}

func fromProtocolRange(protocolRange protocol.Range) geometry.Range {
	return geometry.Range{Start: fromProtocolPosition(protocolRange.Start), End: fromProtocolPosition(protocolRange.End)}
}

func toProtocolRange(geometryRange geometry.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(geometryRange.Start.Line), Character: protocol.UInteger(geometryRange.Start.Character)},
		End:   protocol.Position{Line: protocol.UInteger(geometryRange.End.Line), Character: protocol.UInteger(geometryRange.End.Character)},
	}
}
