package lsp

import (
	"context"
	"errors"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/temirov/shellhint/internal/analyzer"
	"github.com/temirov/shellhint/internal/cmdspec"
	"github.com/temirov/shellhint/internal/session"
	"github.com/temirov/shellhint/internal/syntax"
)

const testDocumentURI = "file:///tmp/deploy.sh"

type commandTable map[string]cmdspec.Command

func (table commandTable) Fetch(_ context.Context, name string) (cmdspec.Command, error) {
	command, found := table[name]
	if !found {
		return cmdspec.Command{}, errors.New("unknown command")
	}
	return command, nil
}

func (table commandTable) Names(context.Context) ([]string, error) {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	return names, nil
}

func newTestServer() *Server {
	table := commandTable{"curl": {
		Name:        "curl",
		Description: "transfer a URL",
		Options: []cmdspec.Option{
			{Names: []string{"-k", "--insecure"}, Description: "Allow insecure server connections"},
			{Names: []string{"-o", "--output"}, Argument: "file", Description: "Write to file instead of stdout"},
		},
	}}
	parser := syntax.NewShellParser()
	return NewServer("shellhint", "test", analyzer.New(table, parser, analyzer.DefaultSettings(), nil), session.NewStore(parser, nil), nil)
}

func position(line uint32, character uint32) protocol.Position {
	return protocol.Position{Line: line, Character: character}
}

func TestInitializeAdvertisesCapabilities(t *testing.T) {
	server := newTestServer()

	result, initializeError := server.initialize(nil, &protocol.InitializeParams{})
	if initializeError != nil {
		t.Fatalf("initialize: %v", initializeError)
	}
	initializeResult, ok := result.(protocol.InitializeResult)
	if !ok {
		t.Fatalf("unexpected result type %T", result)
	}
	completionOptions := initializeResult.Capabilities.CompletionProvider
	if completionOptions == nil || len(completionOptions.TriggerCharacters) != 1 || completionOptions.TriggerCharacters[0] != " " {
		t.Fatalf("unexpected completion options %+v", completionOptions)
	}
	if initializeResult.Capabilities.HoverProvider != true {
		t.Fatalf("hover provider not advertised")
	}
	syncOptions, ok := initializeResult.Capabilities.TextDocumentSync.(protocol.TextDocumentSyncOptions)
	if !ok || syncOptions.Change == nil || *syncOptions.Change != protocol.TextDocumentSyncKindIncremental {
		t.Fatalf("unexpected sync options %+v", initializeResult.Capabilities.TextDocumentSync)
	}
}

func TestDocumentLifecycleCompletionAndHover(t *testing.T) {
	server := newTestServer()

	openError := server.didOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: testDocumentURI, LanguageID: "shellscript", Version: 1, Text: "curl"},
	})
	if openError != nil {
		t.Fatalf("didOpen: %v", openError)
	}

	editRange := protocol.Range{Start: position(0, 4), End: position(0, 4)}
	changeError := server.didChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testDocumentURI},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEvent{Range: &editRange, Text: " -k "}},
	})
	if changeError != nil {
		t.Fatalf("didChange: %v", changeError)
	}

	result, completionError := server.completion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: testDocumentURI},
			Position:     position(0, 8),
		},
	})
	if completionError != nil {
		t.Fatalf("completion: %v", completionError)
	}
	items := result.([]protocol.CompletionItem)
	if len(items) != 2 {
		t.Fatalf("expected the two --output spellings, got %+v", items)
	}
	outputItem := items[1]
	if outputItem.Label != "--output" || outputItem.InsertText == nil || *outputItem.InsertText != "--output ${1:file}" {
		t.Fatalf("unexpected item %+v", outputItem)
	}
	if outputItem.InsertTextFormat == nil || *outputItem.InsertTextFormat != protocol.InsertTextFormatSnippet {
		t.Fatalf("snippet format missing on %+v", outputItem)
	}

	hover, hoverError := server.hover(nil, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: testDocumentURI},
			Position:     position(0, 6),
		},
	})
	if hoverError != nil || hover == nil {
		t.Fatalf("hover = %+v, %v", hover, hoverError)
	}
	content := hover.Contents.(protocol.MarkupContent)
	if content.Value != "`-k`, `--insecure`\n\nAllow insecure server connections" {
		t.Fatalf("hover markdown = %q", content.Value)
	}
	if hover.Range == nil || hover.Range.Start.Character != 5 || hover.Range.End.Character != 7 {
		t.Fatalf("hover range = %+v", hover.Range)
	}

	if closeError := server.didClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testDocumentURI},
	}); closeError != nil {
		t.Fatalf("didClose: %v", closeError)
	}
	result, _ = server.completion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: testDocumentURI},
			Position:     position(0, 8),
		},
	})
	if items := result.([]protocol.CompletionItem); len(items) != 0 {
		t.Fatalf("closed document must yield no items, got %+v", items)
	}
}

func TestToSessionChange(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		contentChange  any
		expectRange    bool
		expectAccepted bool
	}{
		{name: "ranged", contentChange: protocol.TextDocumentContentChangeEvent{Range: &protocol.Range{}, Text: "x"}, expectRange: true, expectAccepted: true},
		{name: "whole", contentChange: protocol.TextDocumentContentChangeEventWhole{Text: "x"}, expectAccepted: true},
		{name: "whole_pointer", contentChange: &protocol.TextDocumentContentChangeEventWhole{Text: "x"}, expectAccepted: true},
		{name: "unknown", contentChange: "x"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			change, accepted := toSessionChange(testCase.contentChange)
			if accepted != testCase.expectAccepted {
				t.Fatalf("accepted = %v", accepted)
			}
			if (change.Range != nil) != testCase.expectRange {
				t.Fatalf("range = %+v", change.Range)
			}
		})
	}
}
