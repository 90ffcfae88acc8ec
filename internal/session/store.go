// Package session keeps the text and syntax tree of every open document.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/temirov/shellhint/internal/geometry"
	"github.com/temirov/shellhint/internal/syntax"
)

const (
	documentErrorFormat = "%w: %s"
	parseErrorFormat    = "parse %s: %w"

	logFieldURI     = "uri"
	logFieldVersion = "version"
	logFieldChanges = "changes"

	logMessageOpened  = "document opened"
	logMessageChanged = "document changed"
	logMessageClosed  = "document closed"
)

var (
	// ErrDocumentNotFound indicates a URI that was never opened or already closed.
	ErrDocumentNotFound = errors.New("session: document not found")
	// ErrMixedChanges indicates a change batch mixing ranged and full replacements.
	ErrMixedChanges = errors.New("session: incremental and full changes mixed")
)

// Document is an immutable snapshot of one open document.
type Document struct {
	URI     string
	Version int32
	Text    string
	Tree    syntax.Tree
}

// Change replaces Range with Text, or the whole document when Range is nil.
type Change struct {
	Range *geometry.Range
	Text  string
}

// Store maps document URIs to their latest snapshot. Updates to one store are
// serialized; snapshots handed out are never modified afterwards.
type Store struct {
	mutex     sync.Mutex
	parser    syntax.Parser
	documents map[string]Document
	logger    *zap.Logger
}

// NewStore constructs an empty Store. A nil logger disables logging.
func NewStore(parser syntax.Parser, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{parser: parser, documents: make(map[string]Document), logger: logger}
}

// Open parses text and records it under uri, replacing any previous entry.
func (store *Store) Open(ctx context.Context, uri string, version int32, text string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	tree, parseError := store.parser.Parse(ctx, text, nil)
	if parseError != nil {
		return fmt.Errorf(parseErrorFormat, uri, parseError)
	}
	store.documents[uri] = Document{URI: uri, Version: version, Text: text, Tree: tree}
	store.logger.Debug(logMessageOpened, zap.String(logFieldURI, uri), zap.Int32(logFieldVersion, version))
	return nil
}

// Change applies changes in order. A batch must be entirely ranged, which
// re-parses incrementally, or entirely full, where the last text wins.
func (store *Store) Change(ctx context.Context, uri string, version int32, changes []Change) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	document, exists := store.documents[uri]
	if !exists {
		return fmt.Errorf(documentErrorFormat, ErrDocumentNotFound, uri)
	}
	if len(changes) == 0 {
		document.Version = version
		store.documents[uri] = document
		return nil
	}

	rangedCount := 0
	for _, change := range changes {
		if change.Range != nil {
			rangedCount++
		}
	}

	var (
		updatedText  string
		previousTree syntax.Tree
	)
	switch rangedCount {
	case len(changes):
		updatedText = document.Text
		for _, change := range changes {
			var delta syntax.EditDelta
			updatedText, delta = syntax.ApplyEdit(updatedText, *change.Range, change.Text)
			document.Tree.Edit(delta)
		}
		previousTree = document.Tree
	case 0:
		updatedText = changes[len(changes)-1].Text
	default:
		return fmt.Errorf(documentErrorFormat, ErrMixedChanges, uri)
	}

	tree, parseError := store.parser.Parse(ctx, updatedText, previousTree)
	if parseError != nil {
		return fmt.Errorf(parseErrorFormat, uri, parseError)
	}
	store.documents[uri] = Document{URI: uri, Version: version, Text: updatedText, Tree: tree}
	store.logger.Debug(logMessageChanged,
		zap.String(logFieldURI, uri),
		zap.Int32(logFieldVersion, version),
		zap.Int(logFieldChanges, len(changes)))
	return nil
}

// Close forgets uri.
func (store *Store) Close(uri string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if _, exists := store.documents[uri]; !exists {
		return fmt.Errorf(documentErrorFormat, ErrDocumentNotFound, uri)
	}
	delete(store.documents, uri)
	store.logger.Debug(logMessageClosed, zap.String(logFieldURI, uri))
	return nil
}

// Snapshot returns the latest state of uri.
func (store *Store) Snapshot(uri string) (Document, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	document, exists := store.documents[uri]
	if !exists {
		return Document{}, fmt.Errorf(documentErrorFormat, ErrDocumentNotFound, uri)
	}
	return document, nil
}

// URIs lists the open documents in lexical order.
func (store *Store) URIs() []string {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	uris := make([]string, 0, len(store.documents))
	for uri := range store.documents {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}
